package vgiprom

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

type addParams struct {
	A int32 `vgirpc:"a"`
	B int32 `vgirpc:"b"`
}

func newInstrumentedServer(t *testing.T, hook vgirpc.DispatchHook) *vgirpc.Server {
	t.Helper()
	server := vgirpc.NewServer()
	vgirpc.Unary(server, "add", func(_ context.Context, _ *vgirpc.CallContext, p addParams) (int32, error) {
		return p.A + p.B, nil
	})
	vgirpc.UnaryVoid(server, "fail", func(_ context.Context, _ *vgirpc.CallContext, _ struct{}) error {
		return vgirpc.NewRpcError("ValueError", "nope")
	})
	server.SetDispatchHook(hook)
	return server
}

func scrape(t *testing.T, hook *PrometheusHook) string {
	t.Helper()
	srv := httptest.NewServer(hook.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusHookDefaults(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{})
	require.NoError(t, err)
	defer hook.Close()

	assert.Equal(t, "vgirpc", hook.opts.Namespace)
	assert.Equal(t, "/metrics", hook.opts.Path)
	assert.Equal(t, 5*time.Second, hook.opts.ReadTimeout)
	assert.Equal(t, 10*time.Second, hook.opts.WriteTimeout)
	assert.NotNil(t, hook.Registry())
}

func TestPrometheusHookRecordsCalls(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{Namespace: "fixture"})
	require.NoError(t, err)
	defer hook.Close()
	server := newInstrumentedServer(t, hook)

	for range 3 {
		_, _, err := server.CallJSON(context.Background(), "add", []byte(`{"a":1,"b":2}`))
		require.NoError(t, err)
	}
	_, _, err = server.CallJSON(context.Background(), "fail", nil)
	require.Error(t, err)

	body := scrape(t, hook)
	assert.Contains(t, body, `fixture_requests_total{method="add",status="ok"} 3`)
	assert.Contains(t, body, `fixture_requests_total{method="fail",status="error"} 1`)
	assert.Contains(t, body, `fixture_errors_total{error_type="ValueError",method="fail"} 1`)
	assert.Contains(t, body, `fixture_request_duration_seconds_count{method="add"} 3`)
	assert.Contains(t, body, `fixture_batch_bytes_total{direction="out",method="add"}`)
}

func TestPrometheusHookGoErrorType(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{})
	require.NoError(t, err)
	defer hook.Close()

	_, token := hook.OnDispatchStart(context.Background(), vgirpc.DispatchInfo{Method: "m"})
	hook.OnDispatchEnd(context.Background(), token, vgirpc.DispatchInfo{Method: "m"}, nil, errors.New("boom"))

	assert.Contains(t, scrape(t, hook), `vgirpc_errors_total{error_type="*errors.errorString",method="m"} 1`)
}

func TestPrometheusHookStopsAfterClose(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{})
	require.NoError(t, err)
	require.NoError(t, hook.Close())
	require.NoError(t, hook.Close())

	_, token := hook.OnDispatchStart(context.Background(), vgirpc.DispatchInfo{Method: "late"})
	hook.OnDispatchEnd(context.Background(), token, vgirpc.DispatchInfo{Method: "late"}, nil, nil)

	assert.NotContains(t, scrape(t, hook), `method="late"`)
}
