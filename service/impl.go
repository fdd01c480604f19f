// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Query-farm/vgi-typefixture/fixture"
	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

// Service owns the object table and serialises access to the fixture.
type Service struct {
	mu      sync.Mutex
	objects *ObjectTable
}

// New returns a Service with a fresh object table. The canonical
// fixture.AObjectObject gets digest hooks bound to that table.
func New() *Service {
	s := &Service{objects: NewObjectTable()}
	fixture.AObjectObject.SetHooks(NewDigestHooks(s.objects))
	return s
}

// Objects returns the service's handle table.
func (s *Service) Objects() *ObjectTable {
	return s.objects
}

// RegisterMethods creates a Service and registers all of its methods on server.
func RegisterMethods(server *vgirpc.Server) *Service {
	s := New()
	s.Register(server)
	return s
}

// Register registers every fixture operation on server.
func (s *Service) Register(server *vgirpc.Server) {
	// Scalars with parameterised variants
	registerScalar(s, server, "boolean",
		fixture.StaticBooleanMethod, fixture.StaticBooleanMethodWithArgs,
		(*fixture.TestClass).BooleanMethod, (*fixture.TestClass).BooleanMethodWithArgs)
	registerScalar(s, server, "byte",
		fixture.StaticByteMethod, fixture.StaticByteMethodWithArgs,
		(*fixture.TestClass).ByteMethod, (*fixture.TestClass).ByteMethodWithArgs)
	registerScalar(s, server, "char",
		fixture.StaticCharMethod, fixture.StaticCharMethodWithArgs,
		(*fixture.TestClass).CharMethod, (*fixture.TestClass).CharMethodWithArgs)
	registerScalar(s, server, "short",
		fixture.StaticShortMethod, fixture.StaticShortMethodWithArgs,
		(*fixture.TestClass).ShortMethod, (*fixture.TestClass).ShortMethodWithArgs)
	registerScalar(s, server, "int",
		fixture.StaticIntMethod, fixture.StaticIntMethodWithArgs,
		(*fixture.TestClass).IntMethod, (*fixture.TestClass).IntMethodWithArgs)
	registerScalar(s, server, "long",
		fixture.StaticLongMethod, fixture.StaticLongMethodWithArgs,
		(*fixture.TestClass).LongMethod, (*fixture.TestClass).LongMethodWithArgs)
	registerScalar(s, server, "float",
		fixture.StaticFloatMethod, fixture.StaticFloatMethodWithArgs,
		(*fixture.TestClass).FloatMethod, (*fixture.TestClass).FloatMethodWithArgs)
	registerScalar(s, server, "double",
		fixture.StaticDoubleMethod, fixture.StaticDoubleMethodWithArgs,
		(*fixture.TestClass).DoubleMethod, (*fixture.TestClass).DoubleMethodWithArgs)

	// Object kinds
	unary(server, "static_string_method", "Returns the shared string constant.",
		constant(s, fixture.StaticStringMethod))
	unary(server, "string_method", "Returns the string constant through an instance.",
		instance(s, (*fixture.TestClass).StringMethod))
	unary(server, "static_echo_method", "Returns value unchanged.",
		guarded(s, func(_ *vgirpc.CallContext, p EchoParams) (string, error) {
			return fixture.StaticEchoMethod(p.Value), nil
		}))
	unary(server, "static_object_method", "Returns the handle of the canonical object.",
		constant(s, func() int64 { return s.objects.Intern(fixture.StaticObjectMethod()) }))
	unary(server, "object_method", "Returns the handle of the canonical object through an instance.",
		instance(s, func(c *fixture.TestClass) int64 { return s.objects.Intern(c.ObjectMethod()) }))
	unary(server, "static_class_method", "Returns the handle of the TestClass class object.",
		constant(s, func() int64 { return s.objects.Intern(fixture.StaticClassMethod()) }))
	unary(server, "class_method", "Returns the handle of the TestClass class object through an instance.",
		instance(s, func(c *fixture.TestClass) int64 { return s.objects.Intern(c.ClassMethod()) }))
	unary(server, "static_throwable_method", "Returns the canonical throwable.",
		constant(s, func() ThrowableValue { return s.throwableValue(fixture.StaticThrowableMethod()) }))
	unary(server, "throwable_method", "Returns the canonical throwable through an instance.",
		instance(s, func(c *fixture.TestClass) ThrowableValue { return s.throwableValue(c.ThrowableMethod()) }))

	// Void
	unaryVoid(server, "static_void_method", "Does nothing.",
		guardedVoid(s, func(_ *vgirpc.CallContext, _ NoParams) error {
			fixture.StaticVoidMethod()
			return nil
		}))
	unaryVoid(server, "void_method", "Does nothing through an instance.",
		guardedVoid(s, func(_ *vgirpc.CallContext, p InstanceParams) error {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return err
			}
			c.VoidMethod()
			return nil
		}))
	unaryVoid(server, "static_void_method_with_args", "Accepts and ignores an int, a boolean and a char.",
		guardedVoid(s, func(_ *vgirpc.CallContext, p VoidArgsParams) error {
			fixture.StaticVoidMethodWithArgs(p.A, p.B, p.C)
			return nil
		}))
	unaryVoid(server, "void_method_with_args", "Accepts and ignores an int, a boolean and a char through an instance.",
		guardedVoid(s, func(_ *vgirpc.CallContext, p InstanceVoidArgsParams) error {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return err
			}
			c.VoidMethodWithArgs(p.A, p.B, p.C)
			return nil
		}))

	// Faults
	unary(server, "call_static_method_throws_exception", "Always fails with Exception.",
		guarded(s, func(_ *vgirpc.CallContext, _ NoParams) (int64, error) {
			obj, err := fixture.CallStaticMethodThrowsException()
			return s.objects.Intern(obj), err
		}))
	unary(server, "call_method_throws_exception", "Always fails with Exception through an instance.",
		guarded(s, func(_ *vgirpc.CallContext, p InstanceParams) (int64, error) {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return 0, err
			}
			obj, err := c.CallMethodThrowsException()
			return s.objects.Intern(obj), err
		}))

	// Arrays
	registerArray(s, server, "boolean",
		fixture.StaticBooleanArrayMethod, fixture.StaticReverseBooleanArray,
		(*fixture.TestClass).BooleanArrayMethod, (*fixture.TestClass).ReverseBooleanArray)
	registerArray(s, server, "byte",
		fixture.StaticByteArrayMethod, fixture.StaticReverseByteArray,
		(*fixture.TestClass).ByteArrayMethod, (*fixture.TestClass).ReverseByteArray)
	registerArray(s, server, "char",
		fixture.StaticCharArrayMethod, fixture.StaticReverseCharArray,
		(*fixture.TestClass).CharArrayMethod, (*fixture.TestClass).ReverseCharArray)
	registerArray(s, server, "short",
		fixture.StaticShortArrayMethod, fixture.StaticReverseShortArray,
		(*fixture.TestClass).ShortArrayMethod, (*fixture.TestClass).ReverseShortArray)
	registerArray(s, server, "int",
		fixture.StaticIntArrayMethod, fixture.StaticReverseIntArray,
		(*fixture.TestClass).IntArrayMethod, (*fixture.TestClass).ReverseIntArray)
	registerArray(s, server, "long",
		fixture.StaticLongArrayMethod, fixture.StaticReverseLongArray,
		(*fixture.TestClass).LongArrayMethod, (*fixture.TestClass).ReverseLongArray)
	registerArray(s, server, "float",
		fixture.StaticFloatArrayMethod, fixture.StaticReverseFloatArray,
		(*fixture.TestClass).FloatArrayMethod, (*fixture.TestClass).ReverseFloatArray)
	registerArray(s, server, "double",
		fixture.StaticDoubleArrayMethod, fixture.StaticReverseDoubleArray,
		(*fixture.TestClass).DoubleArrayMethod, (*fixture.TestClass).ReverseDoubleArray)
	registerArray(s, server, "string",
		fixture.StaticStringArrayMethod, fixture.StaticReverseStringArray,
		(*fixture.TestClass).StringArrayMethod, (*fixture.TestClass).ReverseStringArray)
	registerCheckedArray(s, server, "object",
		func() []int64 { return s.objects.InternAll(fixture.StaticObjectArrayMethod()) },
		s.reverseObjects(fixture.StaticReverseObjectArray),
		func(c *fixture.TestClass) []int64 { return s.objects.InternAll(c.ObjectArrayMethod()) },
		func(c *fixture.TestClass, hs []int64) ([]int64, error) { return s.reverseObjects(c.ReverseObjectArray)(hs) })

	// Shared character sequence
	unary(server, "get_static_char_array", "Returns the shared character sequence.",
		guarded(s, func(_ *vgirpc.CallContext, _ NoParams) ([]fixture.Char, error) {
			return fixture.GetStaticCharArray(), nil
		}))
	unaryVoid(server, "mutate_static_char_array",
		"Overwrites the shared character sequence index for index. Fails with IndexOutOfBoundsException once values runs past its end; earlier writes stay applied.",
		guardedVoid(s, func(ctx *vgirpc.CallContext, p CharsParams) error {
			err := fixture.MutateStaticCharArray(p.Values)
			var oob *fixture.IndexOutOfRangeError
			if errors.As(err, &oob) {
				ctx.ClientLog(vgirpc.LogWarn, "shared sequence partially overwritten",
					vgirpc.KV{Key: "written", Value: strconv.Itoa(oob.Index)},
					vgirpc.KV{Key: "length", Value: strconv.Itoa(oob.Length)})
			}
			return err
		}))
	unaryVoid(server, "replace_static_char_array", "Replaces the shared character sequence with values.",
		guardedVoid(s, func(_ *vgirpc.CallContext, p CharsParams) error {
			fixture.ReplaceStaticCharArray(p.Values)
			return nil
		}))
	unaryVoid(server, "reset_static_state", "Restores every shared variable and the shared character sequence to their initial values.",
		guardedVoid(s, func(ctx *vgirpc.CallContext, _ NoParams) error {
			fixture.ResetShared()
			ctx.ClientLog(vgirpc.LogInfo, "shared state reset")
			return nil
		}))

	// Shared and instance variables
	registerVar(s, server, "byte", func(st *fixture.SharedState) *int8 { return &st.ByteVar }, func(c *fixture.TestClass) *int8 { return &c.ByteVar })
	registerVar(s, server, "short", func(st *fixture.SharedState) *int16 { return &st.ShortVar }, func(c *fixture.TestClass) *int16 { return &c.ShortVar })
	registerVar(s, server, "int", func(st *fixture.SharedState) *int32 { return &st.IntVar }, func(c *fixture.TestClass) *int32 { return &c.IntVar })
	registerVar(s, server, "long", func(st *fixture.SharedState) *int64 { return &st.LongVar }, func(c *fixture.TestClass) *int64 { return &c.LongVar })
	registerVar(s, server, "float", func(st *fixture.SharedState) *float32 { return &st.FloatVar }, func(c *fixture.TestClass) *float32 { return &c.FloatVar })
	registerVar(s, server, "double", func(st *fixture.SharedState) *float64 { return &st.DoubleVar }, func(c *fixture.TestClass) *float64 { return &c.DoubleVar })
	registerVar(s, server, "boolean", func(st *fixture.SharedState) *bool { return &st.BooleanVar }, func(c *fixture.TestClass) *bool { return &c.BooleanVar })
	registerVar(s, server, "char", func(st *fixture.SharedState) *fixture.Char { return &st.CharVar }, func(c *fixture.TestClass) *fixture.Char { return &c.CharVar })
	registerVar(s, server, "string_object", func(st *fixture.SharedState) *string { return &st.StringObjectVar }, func(c *fixture.TestClass) *string { return &c.StringObjectVar })

	unary(server, "get_int_field", "Returns the read-only int field of an instance.",
		instance(s, (*fixture.TestClass).IntField))
	unary(server, "get_bool_field", "Returns the read-only boolean field of an instance.",
		instance(s, (*fixture.TestClass).BoolField))

	// Object handles
	unary(server, "new_instance", "Creates a TestClass with the named hook set (digest, failing or none) and returns its handle.",
		guarded(s, s.newInstance))
	unaryVoid(server, "release_object", "Forgets an object handle. Pinned handles cannot be released.",
		guardedVoid(s, func(ctx *vgirpc.CallContext, p HandleParams) error {
			if err := s.objects.Release(p.Handle); err != nil {
				return err
			}
			ctx.ClientLog(vgirpc.LogDebug, "released object", vgirpc.KV{Key: "handle", Value: strconv.FormatInt(p.Handle, 10)})
			return nil
		}))
	unary(server, "describe_object", "Describes the object behind a handle.",
		guarded(s, func(_ *vgirpc.CallContext, p HandleParams) (ObjectInfo, error) {
			return s.objects.Info(p.Handle)
		}))
	unary(server, "object_count", "Returns the number of live object handles.",
		constant(s, func() int64 { return int64(s.objects.Len()) }))

	// Callback trampolines
	registerCallback(s, server, "string", (*fixture.TestClass).CallMeBackWithString)
	registerCallback(s, server, "byte", (*fixture.TestClass).CallMeBackWithByte)
	registerCallback(s, server, "boolean", (*fixture.TestClass).CallMeBackWithBoolean)
	registerCallback(s, server, "int", (*fixture.TestClass).CallMeBackWithInt)
	registerCallback(s, server, "double", (*fixture.TestClass).CallMeBackWithDouble)
	registerCallback(s, server, "double_array", (*fixture.TestClass).CallMeBackWithDoubleArray)
	registerCallback(s, server, "double_list", (*fixture.TestClass).CallMeBackWithDoubleList)
	registerCallback(s, server, "string_list", (*fixture.TestClass).CallMeBackWithStringList)
	registerCallback(s, server, "object", func(c *fixture.TestClass, that int64) (int32, error) {
		target, err := s.objects.Instance(that)
		if err != nil {
			return 0, err
		}
		return c.CallMeBackWithObject(target)
	})
	registerCallback(s, server, "object_ref", func(c *fixture.TestClass, that int64) (int32, error) {
		target, err := s.objects.Instance(that)
		if err != nil {
			return 0, err
		}
		return c.CallMeBackWithObjectRef(target)
	})
	registerCallback(s, server, "object_array", func(c *fixture.TestClass, hs []int64) (int32, error) {
		objs, err := s.objects.LookupAll(hs)
		if err != nil {
			return 0, err
		}
		return c.CallMeBackWithObjectArray(objs)
	})
}

func (s *Service) newInstance(ctx *vgirpc.CallContext, p NewInstanceParams) (int64, error) {
	hooks, ok := hookSet(p.Hooks, s.objects)
	if !ok {
		return 0, vgirpc.NewRpcError("ValueError", "unknown hook set %q", p.Hooks)
	}
	h := s.objects.Intern(fixture.NewTestClass(fixture.WithHooks(hooks)))
	ctx.ClientLog(vgirpc.LogDebug, "created instance",
		vgirpc.KV{Key: "handle", Value: strconv.FormatInt(h, 10)},
		vgirpc.KV{Key: "hooks", Value: p.Hooks})
	return h, nil
}

func (s *Service) throwableValue(t *fixture.Throwable) ThrowableValue {
	return ThrowableValue{Handle: s.objects.Intern(t), Message: t.Message}
}

// reverseObjects lifts an object reversal onto handles. An unknown handle
// fails the whole call with ValueError.
func (s *Service) reverseObjects(reverse func([]fixture.Object) []fixture.Object) func([]int64) ([]int64, error) {
	return func(hs []int64) ([]int64, error) {
		objs, err := s.objects.LookupAll(hs)
		if err != nil {
			return nil, err
		}
		return s.objects.InternAll(reverse(objs)), nil
	}
}

// mapError converts fixture faults into wire errors.
func mapError(err error) error {
	var oob *fixture.IndexOutOfRangeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &oob):
		return vgirpc.NewRpcError("IndexOutOfBoundsException", "%s", oob.Error())
	case errors.Is(err, fixture.ErrException):
		return vgirpc.NewRpcError("Exception", "%s", err.Error())
	}
	return err
}

// callbackError reports a hook failure. Hooks that already speak the wire
// error type are relayed as is.
func callbackError(method string, err error) error {
	if err == nil || errors.Is(err, vgirpc.ErrRpc) {
		return err
	}
	return vgirpc.NewRpcError("CallbackError", "%s: %v", method, err)
}

// --- Registration helpers ---

func unary[P, R any](server *vgirpc.Server, name, doc string, h func(context.Context, *vgirpc.CallContext, P) (R, error)) {
	vgirpc.Unary(server, name, h)
	server.SetMethodDoc(name, doc)
}

func unaryVoid[P any](server *vgirpc.Server, name, doc string, h func(context.Context, *vgirpc.CallContext, P) error) {
	vgirpc.UnaryVoid(server, name, h)
	server.SetMethodDoc(name, doc)
}

// guarded runs fn under the service mutex and maps fixture faults.
func guarded[P, R any](s *Service, fn func(*vgirpc.CallContext, P) (R, error)) func(context.Context, *vgirpc.CallContext, P) (R, error) {
	return func(_ context.Context, ctx *vgirpc.CallContext, p P) (R, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		r, err := fn(ctx, p)
		if err != nil {
			var zero R
			return zero, mapError(err)
		}
		return r, nil
	}
}

func guardedVoid[P any](s *Service, fn func(*vgirpc.CallContext, P) error) func(context.Context, *vgirpc.CallContext, P) error {
	return func(_ context.Context, ctx *vgirpc.CallContext, p P) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return mapError(fn(ctx, p))
	}
}

func constant[R any](s *Service, fn func() R) func(context.Context, *vgirpc.CallContext, NoParams) (R, error) {
	return guarded(s, func(_ *vgirpc.CallContext, _ NoParams) (R, error) {
		return fn(), nil
	})
}

func instance[R any](s *Service, fn func(*fixture.TestClass) R) func(context.Context, *vgirpc.CallContext, InstanceParams) (R, error) {
	return guarded(s, func(_ *vgirpc.CallContext, p InstanceParams) (R, error) {
		c, err := s.objects.Receiver(p.Instance)
		if err != nil {
			var zero R
			return zero, err
		}
		return fn(c), nil
	})
}

func registerScalar[T any](s *Service, server *vgirpc.Server, kind string,
	static func() T, staticArgs func(a, b, c T) T,
	method func(*fixture.TestClass) T, methodArgs func(c *fixture.TestClass, a, b, d T) T,
) {
	unary(server, fmt.Sprintf("static_%s_method", kind),
		fmt.Sprintf("Returns the %s constant.", kind), constant(s, static))
	unary(server, fmt.Sprintf("%s_method", kind),
		fmt.Sprintf("Returns the %s constant through an instance.", kind), instance(s, method))
	unary(server, fmt.Sprintf("static_%s_method_with_args", kind),
		fmt.Sprintf("Ignores three %s arguments and returns the %s constant.", kind, kind),
		guarded(s, func(_ *vgirpc.CallContext, p ArgsParams[T]) (T, error) {
			return staticArgs(p.A, p.B, p.C), nil
		}))
	unary(server, fmt.Sprintf("%s_method_with_args", kind),
		fmt.Sprintf("Ignores three %s arguments and returns the %s constant through an instance.", kind, kind),
		guarded(s, func(_ *vgirpc.CallContext, p InstanceArgsParams[T]) (T, error) {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				var zero T
				return zero, err
			}
			return methodArgs(c, p.A, p.B, p.C), nil
		}))
}

func registerArray[T any](s *Service, server *vgirpc.Server, kind string,
	static func() []T, staticReverse func([]T) []T,
	method func(*fixture.TestClass) []T, methodReverse func(*fixture.TestClass, []T) []T,
) {
	registerCheckedArray(s, server, kind, static,
		func(a []T) ([]T, error) { return staticReverse(a), nil },
		method,
		func(c *fixture.TestClass, a []T) ([]T, error) { return methodReverse(c, a), nil })
}

// registerCheckedArray is registerArray for reversals that can reject
// their input.
func registerCheckedArray[T any](s *Service, server *vgirpc.Server, kind string,
	static func() []T, staticReverse func([]T) ([]T, error),
	method func(*fixture.TestClass) []T, methodReverse func(*fixture.TestClass, []T) ([]T, error),
) {
	unary(server, fmt.Sprintf("static_%s_array_method", kind),
		fmt.Sprintf("Returns the fixed %s array.", kind), constant(s, static))
	unary(server, fmt.Sprintf("%s_array_method", kind),
		fmt.Sprintf("Returns the fixed %s array through an instance.", kind), instance(s, method))
	unary(server, fmt.Sprintf("static_reverse_%s_array", kind),
		fmt.Sprintf("Reverses a %s array and returns it.", kind),
		guarded(s, func(_ *vgirpc.CallContext, p ArrayParams[T]) ([]T, error) {
			return staticReverse(p.Array)
		}))
	unary(server, fmt.Sprintf("reverse_%s_array", kind),
		fmt.Sprintf("Reverses a %s array through an instance and returns it.", kind),
		guarded(s, func(_ *vgirpc.CallContext, p InstanceArrayParams[T]) ([]T, error) {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return nil, err
			}
			return methodReverse(c, p.Array)
		}))
}

func registerVar[T any](s *Service, server *vgirpc.Server, kind string,
	shared func(*fixture.SharedState) *T, field func(*fixture.TestClass) *T,
) {
	unary(server, fmt.Sprintf("get_static_%s_var", kind),
		fmt.Sprintf("Reads the shared %s variable.", kind),
		constant(s, func() T { return *shared(fixture.Shared()) }))
	unaryVoid(server, fmt.Sprintf("set_static_%s_var", kind),
		fmt.Sprintf("Writes the shared %s variable.", kind),
		guardedVoid(s, func(_ *vgirpc.CallContext, p ValueParams[T]) error {
			*shared(fixture.Shared()) = p.Value
			return nil
		}))
	unary(server, fmt.Sprintf("get_%s_var", kind),
		fmt.Sprintf("Reads the %s variable of an instance.", kind),
		instance(s, func(c *fixture.TestClass) T { return *field(c) }))
	unaryVoid(server, fmt.Sprintf("set_%s_var", kind),
		fmt.Sprintf("Writes the %s variable of an instance.", kind),
		guardedVoid(s, func(_ *vgirpc.CallContext, p InstanceValueParams[T]) error {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return err
			}
			*field(c) = p.Value
			return nil
		}))
}

func registerCallback[T any](s *Service, server *vgirpc.Server, kind string, trampoline func(*fixture.TestClass, T) (int32, error)) {
	name := "call_me_back_with_" + kind
	unary(server, name,
		fmt.Sprintf("Forwards a %s to the instance's callback hook and returns the hook's result.", kind),
		guarded(s, func(ctx *vgirpc.CallContext, p InstanceValueParams[T]) (int32, error) {
			c, err := s.objects.Receiver(p.Instance)
			if err != nil {
				return 0, err
			}
			result, err := trampoline(c, p.Value)
			if err != nil {
				return 0, callbackError(name, err)
			}
			ctx.ClientLog(vgirpc.LogTrace, "hook returned", vgirpc.KV{Key: "result", Value: strconv.Itoa(int(result))})
			return result, nil
		}))
}
