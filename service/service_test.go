package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-typefixture/fixture"
	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

// newTestClient serves a fresh Service over an in-memory pipe pair.
func newTestClient(t testing.TB) (*vgirpc.Client, *Service) {
	t.Helper()
	fixture.ResetShared()

	server := vgirpc.NewServer()
	server.SetServerID("test-server")
	svc := RegisterMethods(server)

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.ServeWithContext(ctx, reqR, respW)
	}()
	t.Cleanup(func() {
		cancel()
		reqW.Close()
		<-done
		respW.Close()
		fixture.ResetShared()
	})
	return vgirpc.NewClient(respR, reqW, vgirpc.WithLogLevel(vgirpc.LogTrace)), svc
}

func call[P, R any](t testing.TB, c vgirpc.Caller, method string, params P) R {
	t.Helper()
	r, err := vgirpc.Call[P, R](context.Background(), c, method, params)
	require.NoError(t, err, method)
	return r
}

func callVoid[P any](t *testing.T, c vgirpc.Caller, method string, params P) {
	t.Helper()
	require.NoError(t, vgirpc.CallVoid(context.Background(), c, method, params), method)
}

// rpcErrorType calls method and returns the wire error type it failed with.
func rpcErrorType[P any](t *testing.T, c vgirpc.Caller, method string, params P) string {
	t.Helper()
	resp, err := c.Do(context.Background(), method, params)
	if resp != nil {
		resp.Release()
	}
	require.Error(t, err, method)
	var rpcErr *vgirpc.RpcError
	require.ErrorAs(t, err, &rpcErr)
	return rpcErr.Type
}

var canonical = InstanceParams{Instance: CanonicalHandle}

func TestScalarsOverWire(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, fixture.ABooleanValue, call[NoParams, bool](t, c, "static_boolean_method", NoParams{}))
	assert.Equal(t, fixture.AByteValue, call[NoParams, int8](t, c, "static_byte_method", NoParams{}))
	assert.Equal(t, fixture.ACharValue, call[NoParams, fixture.Char](t, c, "static_char_method", NoParams{}))
	assert.Equal(t, fixture.AShortValue, call[NoParams, int16](t, c, "static_short_method", NoParams{}))
	assert.Equal(t, fixture.AIntValue, call[NoParams, int32](t, c, "static_int_method", NoParams{}))
	assert.Equal(t, fixture.ALongValue, call[NoParams, int64](t, c, "static_long_method", NoParams{}))
	assert.Equal(t, fixture.AFloatValue, call[NoParams, float32](t, c, "static_float_method", NoParams{}))
	assert.Equal(t, fixture.ADoubleValue, call[NoParams, float64](t, c, "static_double_method", NoParams{}))
	assert.Equal(t, fixture.AStringObject, call[NoParams, string](t, c, "static_string_method", NoParams{}))

	assert.Equal(t, fixture.AIntValue, call[InstanceParams, int32](t, c, "int_method", canonical))
	assert.Equal(t, fixture.ACharValue, call[InstanceParams, fixture.Char](t, c, "char_method", canonical))
	assert.Equal(t, fixture.AStringObject, call[InstanceParams, string](t, c, "string_method", canonical))
}

func TestStaticAndInstanceAgree(t *testing.T) {
	c, _ := newTestClient(t)
	h := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksDigest})
	inst := InstanceParams{Instance: h}

	for _, kind := range []string{"boolean", "byte", "char", "short", "int", "long", "float", "double", "string"} {
		t.Run(kind, func(t *testing.T) {
			static, err := c.Do(context.Background(), "static_"+kind+"_method", NoParams{})
			require.NoError(t, err)
			defer static.Release()
			viaInstance, err := c.Do(context.Background(), kind+"_method", inst)
			require.NoError(t, err)
			defer viaInstance.Release()
			assert.Equal(t, static.Batch.Column(0).ValueStr(0), viaInstance.Batch.Column(0).ValueStr(0))
		})
	}
}

func TestWithArgsIgnoresArguments(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, fixture.AIntValue,
		call[ArgsParams[int32], int32](t, c, "static_int_method_with_args", ArgsParams[int32]{A: 1, B: 2, C: 3}))
	assert.Equal(t, fixture.ABooleanValue,
		call[ArgsParams[bool], bool](t, c, "static_boolean_method_with_args", ArgsParams[bool]{}))
	assert.Equal(t, fixture.ACharValue,
		call[ArgsParams[fixture.Char], fixture.Char](t, c, "static_char_method_with_args", ArgsParams[fixture.Char]{A: 'a', B: 'b', C: 'c'}))
	assert.Equal(t, fixture.AShortValue,
		call[InstanceArgsParams[int16], int16](t, c, "short_method_with_args", InstanceArgsParams[int16]{Instance: CanonicalHandle, A: -1, B: 0, C: 1}))
	assert.Equal(t, fixture.AFloatValue,
		call[InstanceArgsParams[float32], float32](t, c, "float_method_with_args", InstanceArgsParams[float32]{Instance: CanonicalHandle, A: 2.5}))

	callVoid(t, c, "static_void_method", NoParams{})
	callVoid(t, c, "void_method", canonical)
	callVoid(t, c, "static_void_method_with_args", VoidArgsParams{A: 7, B: true, C: 'x'})
	callVoid(t, c, "void_method_with_args", InstanceVoidArgsParams{Instance: CanonicalHandle, A: 7, C: 'x'})
}

func TestEcho(t *testing.T) {
	c, _ := newTestClient(t)
	for _, v := range []string{"", "hello", "ünïcødé ✓", fixture.AStringObject} {
		assert.Equal(t, v, call[EchoParams, string](t, c, "static_echo_method", EchoParams{Value: v}))
	}
}

func TestObjectIdentity(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, CanonicalHandle, call[NoParams, int64](t, c, "static_object_method", NoParams{}))
	assert.Equal(t, CanonicalHandle, call[InstanceParams, int64](t, c, "object_method", canonical))
	assert.Equal(t, ClassHandle, call[NoParams, int64](t, c, "static_class_method", NoParams{}))

	thr := call[NoParams, ThrowableValue](t, c, "static_throwable_method", NoParams{})
	assert.Equal(t, ThrowableValue{Handle: ThrowableHandle, Message: fixture.AStringObject}, thr)
	assert.Equal(t, thr, call[InstanceParams, ThrowableValue](t, c, "throwable_method", canonical))

	info := call[HandleParams, ObjectInfo](t, c, "describe_object", HandleParams{Handle: ClassHandle})
	assert.Equal(t, "Class", info.Kind)
	assert.Equal(t, "fixture.TestClass", info.Text)
	assert.True(t, info.Pinned)
}

func TestFaults(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Equal(t, "Exception", rpcErrorType(t, c, "call_static_method_throws_exception", NoParams{}))
	assert.Equal(t, "Exception", rpcErrorType(t, c, "call_method_throws_exception", canonical))
	assert.Equal(t, "NullPointerException", rpcErrorType(t, c, "int_method", InstanceParams{Instance: NullHandle}))
	assert.Equal(t, "ValueError", rpcErrorType(t, c, "int_method", InstanceParams{Instance: 999}))
	assert.Equal(t, "TypeError", rpcErrorType(t, c, "int_method", InstanceParams{Instance: ThrowableHandle}))
	assert.Equal(t, "AttributeError", rpcErrorType(t, c, "no_such_method", NoParams{}))

	// The connection survives every fault.
	assert.Equal(t, fixture.AIntValue, call[NoParams, int32](t, c, "static_int_method", NoParams{}))
}

func TestInstanceLifecycle(t *testing.T) {
	c, svc := newTestClient(t)
	before := call[NoParams, int64](t, c, "object_count", NoParams{})

	h := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksNone})
	assert.Greater(t, h, ClassHandle)
	assert.Equal(t, before+1, call[NoParams, int64](t, c, "object_count", NoParams{}))

	inst, err := svc.Objects().Instance(h)
	require.NoError(t, err)
	assert.Nil(t, inst.Hooks())

	assert.Equal(t, int32(123), call[InstanceParams, int32](t, c, "get_int_field", InstanceParams{Instance: h}))
	assert.True(t, call[InstanceParams, bool](t, c, "get_bool_field", InstanceParams{Instance: h}))

	callVoid(t, c, "release_object", HandleParams{Handle: h})
	assert.Equal(t, before, call[NoParams, int64](t, c, "object_count", NoParams{}))
	assert.Equal(t, "ValueError", rpcErrorType(t, c, "int_method", InstanceParams{Instance: h}))
	assert.Equal(t, "ValueError", rpcErrorType(t, c, "release_object", HandleParams{Handle: CanonicalHandle}))
	assert.Equal(t, "ValueError", rpcErrorType(t, c, "new_instance", NewInstanceParams{Hooks: "bogus"}))
}

func TestSharedVariables(t *testing.T) {
	c, _ := newTestClient(t)

	assert.Zero(t, call[NoParams, int32](t, c, "get_static_int_var", NoParams{}))
	callVoid(t, c, "set_static_int_var", ValueParams[int32]{Value: -42})
	assert.Equal(t, int32(-42), call[NoParams, int32](t, c, "get_static_int_var", NoParams{}))
	assert.Equal(t, int32(-42), fixture.Shared().IntVar)

	callVoid(t, c, "set_static_char_var", ValueParams[fixture.Char]{Value: 'Z'})
	assert.Equal(t, fixture.Char('Z'), call[NoParams, fixture.Char](t, c, "get_static_char_var", NoParams{}))

	callVoid(t, c, "set_static_string_object_var", ValueParams[string]{Value: "shared"})
	assert.Equal(t, "shared", call[NoParams, string](t, c, "get_static_string_object_var", NoParams{}))

	callVoid(t, c, "reset_static_state", NoParams{})
	assert.Zero(t, call[NoParams, int32](t, c, "get_static_int_var", NoParams{}))
	assert.Empty(t, call[NoParams, string](t, c, "get_static_string_object_var", NoParams{}))
}

func TestInstanceVariablesAreIndependent(t *testing.T) {
	c, _ := newTestClient(t)
	a := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksDigest})
	b := call[NewInstanceParams, int64](t, c, "new_instance", NewInstanceParams{Hooks: HooksDigest})

	callVoid(t, c, "set_double_var", InstanceValueParams[float64]{Instance: a, Value: 2.75})
	callVoid(t, c, "set_byte_var", InstanceValueParams[int8]{Instance: a, Value: -128})

	assert.Equal(t, 2.75, call[InstanceParams, float64](t, c, "get_double_var", InstanceParams{Instance: a}))
	assert.Equal(t, int8(-128), call[InstanceParams, int8](t, c, "get_byte_var", InstanceParams{Instance: a}))
	assert.Zero(t, call[InstanceParams, float64](t, c, "get_double_var", InstanceParams{Instance: b}))
	assert.Zero(t, call[NoParams, float64](t, c, "get_static_double_var", NoParams{}))
}

func TestServiceDescribe(t *testing.T) {
	c, _ := newTestClient(t)
	methods, err := c.Describe(context.Background())
	require.NoError(t, err)

	byName := make(map[string]vgirpc.MethodDescription, len(methods))
	for _, m := range methods {
		byName[m.Name] = m
	}
	for _, name := range []string{
		"static_int_method", "int_method", "static_int_method_with_args",
		"static_reverse_char_array", "reverse_object_array", "get_static_char_array",
		"mutate_static_char_array", "call_me_back_with_string_list", "new_instance",
		"get_static_string_object_var", "set_long_var",
	} {
		assert.Contains(t, byName, name)
	}

	m := byName["new_instance"]
	assert.Equal(t, "digest", m.ParamDefaults["hooks"])
	assert.NotEmpty(t, m.Doc)
	assert.False(t, byName["static_void_method"].HasReturn)
	assert.Equal(t, "int32", byName["static_int_method"].ResultType)
}

func TestCallJSON(t *testing.T) {
	server := vgirpc.NewServer()
	RegisterMethods(server)
	t.Cleanup(fixture.ResetShared)

	out, _, err := server.CallJSON(context.Background(), "static_reverse_int_array", []byte(`{"array":[3,2,1]}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(out))

	out, _, err = server.CallJSON(context.Background(), "int_method", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `25025`, string(out))

	out, _, err = server.CallJSON(context.Background(), "static_void_method", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	_, _, err = server.CallJSON(context.Background(), "static_echo_method", []byte(`{"nope":1}`))
	var rpcErr *vgirpc.RpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "TypeError", rpcErr.Type)
}
