package vgirpc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPFixture(t *testing.T, opts ...HttpOption) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewHttpServer(newTestServer(), opts...))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPUnary(t *testing.T) {
	ts := newHTTPFixture(t)
	c, err := NewHttpClient(ts.URL)
	require.NoError(t, err)

	got, err := Call[greetParams, string](context.Background(), c, "greet", greetParams{Name: "ann", Greeting: "hi", Times: 1})
	require.NoError(t, err)
	assert.Equal(t, "hi ann;", got)

	require.NoError(t, CallVoid(context.Background(), c, "noop", noParams{}))

	methods, err := c.Describe(context.Background())
	require.NoError(t, err)
	assert.Len(t, methods, len(newTestServer().Methods()))
}

func TestHTTPZstdAndPrefix(t *testing.T) {
	ts := newHTTPFixture(t, WithPrefix("rpc/"), WithCompressionLevel(3))
	c, err := NewHttpClient(ts.URL, WithZstd(), WithClientPrefix("/rpc"))
	require.NoError(t, err)

	values := make([]bool, 4096)
	for i := range values {
		values[i] = i%3 == 0
	}
	got, err := Call[listParams[bool], []bool](context.Background(), c, "reverse_bool", listParams[bool]{Values: values})
	require.NoError(t, err)
	assert.Equal(t, reverse(values), got)
}

func TestHTTPErrorStatus(t *testing.T) {
	ts := newHTTPFixture(t)
	ctx := context.Background()

	tests := []struct {
		method     string
		wantStatus int
		wantType   string
	}{
		{"fail", http.StatusBadRequest, "ValueError"},
		{"fail_plain", http.StatusInternalServerError, "*errors.errorString"},
		{"panic", http.StatusInternalServerError, "RuntimeError"},
		{"missing", http.StatusNotFound, "AttributeError"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			var body bytes.Buffer
			require.NoError(t, EncodeRequest(&body, tt.method, noParams{}, "", LogInfo))
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/vgi/"+tt.method, &body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", arrowContentType)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, arrowContentType, resp.Header.Get("Content-Type"))

			_, err = ReadResponse(resp.Body)
			var rpcErr *RpcError
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, tt.wantType, rpcErr.Type)
		})
	}
}

func TestHTTPRejectsBadRequests(t *testing.T) {
	ts := newHTTPFixture(t)

	resp, err := http.Post(ts.URL+"/vgi/greet", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/vgi/greet", arrowContentType, strings.NewReader("not arrow"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, err = ReadResponse(resp.Body)
	var rpcErr *RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "ProtocolError", rpcErr.Type)
}

func TestHTTPRejectsOversizedBody(t *testing.T) {
	ts := newHTTPFixture(t, WithMaxRequestBytes(16<<10))

	resp, err := http.Post(ts.URL+"/vgi/greet", arrowContentType, bytes.NewReader(make([]byte, 64<<10)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	_, err = ReadResponse(resp.Body)
	var rpcErr *RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "ProtocolError", rpcErr.Type)

	c, err := NewHttpClient(ts.URL)
	require.NoError(t, err)
	got, err := Call[greetParams, string](context.Background(), c, "greet", greetParams{Name: "ann", Greeting: "hi", Times: 1})
	require.NoError(t, err)
	assert.Equal(t, "hi ann;", got)
}

func TestHTTPPages(t *testing.T) {
	ts := newHTTPFixture(t, WithRepoURL("https://example.com/repo"))

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("/vgi")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "/vgi/describe")
	assert.Contains(t, body, "https://example.com/repo")

	status, body = get("/vgi/describe")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "greet")
	assert.Contains(t, body, "Greets someone.")

	status, _ = get("/elsewhere")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(nil))
	assert.Equal(t, http.StatusNotFound, statusFor(NewRpcError("AttributeError", "x")))
	for _, typ := range []string{"TypeError", "ValueError", "ProtocolError", "VersionError"} {
		assert.Equal(t, http.StatusBadRequest, statusFor(NewRpcError(typ, "x")), typ)
	}
	assert.Equal(t, http.StatusInternalServerError, statusFor(NewRpcError("IndexOutOfBoundsException", "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestAcceptsZstd(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/vgi/x", nil)
	assert.False(t, acceptsZstd(r))
	r.Header.Set("Accept-Encoding", "gzip, ZSTD;q=0.5")
	assert.True(t, acceptsZstd(r))
}

func TestSetCompressionLevelRange(t *testing.T) {
	h := NewHttpServer(NewServer())
	assert.Error(t, h.SetCompressionLevel(23))
	assert.NoError(t, h.SetCompressionLevel(0))
	assert.Equal(t, "/vgi", h.Prefix())
}
