package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-typefixture/fixture"
	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

func TestDigestHooks(t *testing.T) {
	c, _ := newTestClient(t)
	h := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksDigest})
	other := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksNone})

	assert.Equal(t, int32(-7), call[InstanceValueParams[int8], int32](t, c, "call_me_back_with_byte", InstanceValueParams[int8]{Instance: h, Value: -7}))
	assert.Equal(t, int32(1), call[InstanceValueParams[bool], int32](t, c, "call_me_back_with_boolean", InstanceValueParams[bool]{Instance: h, Value: true}))
	assert.Equal(t, int32(0), call[InstanceValueParams[bool], int32](t, c, "call_me_back_with_boolean", InstanceValueParams[bool]{Instance: h}))
	assert.Equal(t, int32(123456), call[InstanceValueParams[int32], int32](t, c, "call_me_back_with_int", InstanceValueParams[int32]{Instance: h, Value: 123456}))
	assert.Equal(t, doublesDigest([]float64{-3.9}), call[InstanceValueParams[float64], int32](t, c, "call_me_back_with_double", InstanceValueParams[float64]{Instance: h, Value: -3.9}))
	assert.Equal(t, stringDigest("hello"), call[InstanceValueParams[string], int32](t, c, "call_me_back_with_string", InstanceValueParams[string]{Instance: h, Value: "hello"}))
	assert.Equal(t, doublesDigest([]float64{1, 2}), call[InstanceValueParams[[]float64], int32](t, c, "call_me_back_with_double_array", InstanceValueParams[[]float64]{Instance: h, Value: []float64{1, 2}}))
	assert.Equal(t, doublesDigest([]float64{1, 2, 3}), call[InstanceValueParams[[]float64], int32](t, c, "call_me_back_with_double_list", InstanceValueParams[[]float64]{Instance: h, Value: []float64{1, 2, 3}}))
	assert.Equal(t, stringsDigest([]string{"x"}), call[InstanceValueParams[[]string], int32](t, c, "call_me_back_with_string_list", InstanceValueParams[[]string]{Instance: h, Value: []string{"x"}}))
	assert.Equal(t, int32(other), call[InstanceValueParams[int64], int32](t, c, "call_me_back_with_object", InstanceValueParams[int64]{Instance: h, Value: other}))
	assert.Equal(t, int32(CanonicalHandle), call[InstanceValueParams[int64], int32](t, c, "call_me_back_with_object_ref", InstanceValueParams[int64]{Instance: h, Value: CanonicalHandle}))
	assert.Equal(t, int32(NullHandle), call[InstanceValueParams[int64], int32](t, c, "call_me_back_with_object", InstanceValueParams[int64]{Instance: h, Value: NullHandle}))
	assert.Equal(t, handlesDigest([]int64{CanonicalHandle, NullHandle}), call[InstanceValueParams[[]int64], int32](t, c, "call_me_back_with_object_array", InstanceValueParams[[]int64]{Instance: h, Value: []int64{CanonicalHandle, NullHandle}}))
}

func TestDigestsDependOnContent(t *testing.T) {
	c, _ := newTestClient(t)
	h := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksDigest})
	str := func(v string) int32 {
		return call[InstanceValueParams[string], int32](t, c, "call_me_back_with_string", InstanceValueParams[string]{Instance: h, Value: v})
	}
	dbl := func(v float64) int32 {
		return call[InstanceValueParams[float64], int32](t, c, "call_me_back_with_double", InstanceValueParams[float64]{Instance: h, Value: v})
	}
	arr := func(v []float64) int32 {
		return call[InstanceValueParams[[]float64], int32](t, c, "call_me_back_with_double_array", InstanceValueParams[[]float64]{Instance: h, Value: v})
	}
	list := func(v []string) int32 {
		return call[InstanceValueParams[[]string], int32](t, c, "call_me_back_with_string_list", InstanceValueParams[[]string]{Instance: h, Value: v})
	}

	assert.NotEqual(t, str("abc"), str("xyz"))
	assert.Equal(t, str("héllo"), str("héllo"))
	assert.NotEqual(t, dbl(1.0), dbl(1.9999))
	assert.NotEqual(t, dbl(0), dbl(math.Copysign(0, -1)))
	assert.NotEqual(t, arr([]float64{1, 2}), arr([]float64{7, 8}))
	assert.NotEqual(t, arr([]float64{1, 2}), arr([]float64{2, 1}))
	assert.NotEqual(t, list([]string{"ab", "c"}), list([]string{"a", "bc"}))
}

func TestSaturate(t *testing.T) {
	assert.Equal(t, int32(5), saturate(5))
	assert.Equal(t, int32(math.MaxInt32), saturate(math.MaxInt32))
	assert.Equal(t, int32(math.MaxInt32), saturate(math.MaxInt32+1))
	assert.Equal(t, int32(math.MaxInt32), saturate(math.MaxInt64))
}

func TestCanonicalObjectHasDigestHooks(t *testing.T) {
	c, _ := newTestClient(t)
	assert.Equal(t, int32(42), call[InstanceValueParams[int32], int32](t, c, "call_me_back_with_int", InstanceValueParams[int32]{Instance: CanonicalHandle, Value: 42}))
}

func TestCallbackFailures(t *testing.T) {
	c, _ := newTestClient(t)
	failing := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksFailing})
	missing := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksNone})

	assert.Equal(t, "CallbackError", rpcErrorType(t, c, "call_me_back_with_int", InstanceValueParams[int32]{Instance: failing, Value: 1}))
	assert.Equal(t, "CallbackError", rpcErrorType(t, c, "call_me_back_with_string_list", InstanceValueParams[[]string]{Instance: missing}))
	assert.Equal(t, "TypeError", rpcErrorType(t, c, "call_me_back_with_object", InstanceValueParams[int64]{Instance: failing, Value: ThrowableHandle}))
}

func TestCallbackLogsReachClient(t *testing.T) {
	c, _ := newTestClient(t)
	resp, err := c.Do(context.Background(), "call_me_back_with_int", InstanceValueParams[int32]{Instance: CanonicalHandle, Value: 9})
	require.NoError(t, err)
	defer resp.Release()
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, vgirpc.LogTrace, resp.Logs[0].Level)
	assert.Equal(t, "9", resp.Logs[0].Extras["result"])
}

func TestCallbackError(t *testing.T) {
	assert.NoError(t, callbackError("m", nil))

	wire := vgirpc.NewRpcError("ValueError", "bad")
	assert.Same(t, wire, callbackError("m", wire))

	var rpcErr *vgirpc.RpcError
	require.ErrorAs(t, callbackError("m", fixture.ErrHookNotInstalled), &rpcErr)
	assert.Equal(t, "CallbackError", rpcErr.Type)
	assert.Contains(t, rpcErr.Message, "m:")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bounds", &fixture.IndexOutOfRangeError{Index: 3, Length: 3}, "IndexOutOfBoundsException"},
		{"exception", fixture.ErrException, "Exception"},
		{"wrapped", errors.Join(errors.New("ctx"), fixture.ErrException), "Exception"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rpcErr *vgirpc.RpcError
			require.ErrorAs(t, mapError(tt.err), &rpcErr)
			assert.Equal(t, tt.want, rpcErr.Type)
		})
	}
	assert.NoError(t, mapError(nil))
	plain := errors.New("plain")
	assert.Same(t, plain, mapError(plain))
}
