package vgirpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyBatch(t *testing.T) {
	assert.Equal(t, BatchData, classifyBatch(arrow.Metadata{}))
	assert.Equal(t, BatchLog, classifyBatch(arrow.NewMetadata([]string{MetaLogLevel}, []string{"INFO"})))
	assert.Equal(t, BatchError, classifyBatch(arrow.NewMetadata([]string{MetaLogLevel}, []string{"EXCEPTION"})))
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, LogDebug, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestErrorExtraRoundTrip(t *testing.T) {
	plain := buildErrorExtra(NewRpcError("ValueError", "nope"), false)
	var extra errorExtra
	require.NoError(t, json.Unmarshal([]byte(plain), &extra))
	assert.Equal(t, "ValueError", extra.ExceptionType)
	assert.Empty(t, extra.Traceback)
	assert.Empty(t, extra.Frames)

	debug := buildErrorExtra(errors.New("wrapped"), true)
	require.NoError(t, json.Unmarshal([]byte(debug), &extra))
	assert.Equal(t, "*errors.errorString", extra.ExceptionType)
	assert.NotEmpty(t, extra.Traceback)
	assert.NotEmpty(t, extra.Frames)

	rpcErr := parseErrorExtra("fallback", debug, "req-9")
	assert.Equal(t, "*errors.errorString", rpcErr.Type)
	assert.Equal(t, "wrapped", rpcErr.Message)
	assert.Equal(t, "req-9", rpcErr.RequestID)

	rpcErr = parseErrorExtra("fallback", "{not json", "")
	assert.Equal(t, "RemoteError", rpcErr.Type)
	assert.Equal(t, "fallback", rpcErr.Message)
}

func TestRpcErrorIs(t *testing.T) {
	err := errors.Join(errors.New("context"), NewRpcError("TypeError", "bad %s", "thing"))
	assert.ErrorIs(t, err, ErrRpc)
	assert.Equal(t, "TypeError: bad thing", NewRpcError("TypeError", "bad %s", "thing").Error())
	assert.NotErrorIs(t, errors.New("plain"), ErrRpc)
}

func TestReadRequestValidation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, "greet", greetParams{Name: "x"}, "7", LogWarn))
	req, err := ReadRequest(&buf)
	require.NoError(t, err)
	defer req.Batch.Release()
	assert.Equal(t, "greet", req.Method)
	assert.Equal(t, "7", req.RequestID)
	assert.Equal(t, "WARN", req.LogLevel)
	assert.Equal(t, ProtocolVersion, req.Version)

	_, err = ReadRequest(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerSurvivesBadVersion(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, EncodeRequest(&in, "noop", noParams{}, "", ""))
	raw := bytes.Replace(in.Bytes(), []byte(MetaRequestVersion), []byte("vgi_rpc.request_versiox"), 1)

	var out bytes.Buffer
	require.NoError(t, newTestServer().serveOne(context.Background(), bytes.NewReader(raw), &out))
	_, err := ReadResponse(&out)
	var rpcErr *RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "VersionError", rpcErr.Type)
}

type recordingHook struct {
	name  string
	trail *[]string
	panic bool
}

type ctxKey string

func (h recordingHook) OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken) {
	*h.trail = append(*h.trail, "start:"+h.name+":"+info.Method)
	if h.panic {
		panic("hook failure")
	}
	return context.WithValue(ctx, ctxKey(h.name), true), h.name
}

func (h recordingHook) OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats *CallStatistics, err error) {
	status := "ok"
	if err != nil {
		status = "err"
	}
	*h.trail = append(*h.trail, "end:"+token.(string)+":"+status)
}

func TestMultiHookNesting(t *testing.T) {
	var trail []string
	s := newTestServer()
	s.SetDispatchHook(MultiHook{
		recordingHook{name: "outer", trail: &trail},
		recordingHook{name: "inner", trail: &trail},
	})
	c := newPipeClient(t, s)

	require.NoError(t, CallVoid(context.Background(), c, "noop", noParams{}))
	_, err := Call[noParams, int64](context.Background(), c, "fail", noParams{})
	require.Error(t, err)

	assert.Equal(t, []string{
		"start:outer:noop", "start:inner:noop", "end:inner:ok", "end:outer:ok",
		"start:outer:fail", "start:inner:fail", "end:inner:err", "end:outer:err",
	}, trail)
}

func TestPanickingHookDoesNotFailCall(t *testing.T) {
	var trail []string
	s := newTestServer()
	s.SetDispatchHook(recordingHook{name: "bad", trail: &trail, panic: true})
	c := newPipeClient(t, s)

	got, err := Call[greetParams, string](context.Background(), c, "greet", greetParams{Name: "z", Greeting: "a", Times: 1})
	require.NoError(t, err)
	assert.Equal(t, "a z;", got)
	assert.Equal(t, []string{"start:bad:greet"}, trail, "end is skipped when start panicked")
}

func TestCallStatistics(t *testing.T) {
	var stats CallStatistics
	stats.RecordInput(1, 64)
	stats.RecordOutput(1, 32)
	stats.RecordOutput(1, 8)
	assert.Equal(t, int64(1), stats.InputBatches)
	assert.Equal(t, int64(2), stats.OutputBatches)
	assert.Equal(t, int64(40), stats.OutputBytes)
}

func TestParamsFromJSON(t *testing.T) {
	v, err := paramsFromJSON(reflect.TypeFor[greetParams](), []byte(`{"name":"q","times":3}`))
	require.NoError(t, err)
	p := v.Interface().(greetParams)
	assert.Equal(t, greetParams{Name: "q", Greeting: "hello", Times: 3}, p)

	_, err = paramsFromJSON(reflect.TypeFor[greetParams](), []byte(`{"name":"q","bogus":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown params: bogus")
}
