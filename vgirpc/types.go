// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowSerializable is the interface for Go types that can be serialized
// to/from Arrow IPC streams. At the method parameter/result level, these are
// serialized as binary (IPC stream bytes). When nested inside another
// ArrowSerializable type, they become Arrow struct columns.
type ArrowSerializable interface {
	ArrowSchema() *arrow.Schema
}

var arrowSerializableType = reflect.TypeOf((*ArrowSerializable)(nil)).Elem()

func isArrowSerializable(t reflect.Type) bool {
	return t.Implements(arrowSerializableType) || reflect.PointerTo(t).Implements(arrowSerializableType)
}

// tagInfo holds parsed information from a `vgirpc` struct tag.
type tagInfo struct {
	Name      string
	Default   *string // nil if no default
	ArrowType string  // explicit type override: "int32", "float32", "enum", "binary"
}

// parseTag parses a vgirpc struct tag like "name", "name,default=foo", "name,enum", "name,int32".
func parseTag(tag string) tagInfo {
	parts := strings.Split(tag, ",")
	info := tagInfo{Name: parts[0]}
	for _, part := range parts[1:] {
		if val, ok := strings.CutPrefix(part, "default="); ok {
			info.Default = &val
		} else {
			info.ArrowType = part
		}
	}
	return info
}

// goTypeToArrowType maps a Go reflect.Type to an Arrow DataType.
// The tag provides additional type hints (e.g., "enum", "int32", "binary").
func goTypeToArrowType(t reflect.Type, tag tagInfo) (arrow.DataType, bool, error) {
	nullable := false

	if t.Kind() == reflect.Ptr {
		nullable = true
		t = t.Elem()
	}

	switch tag.ArrowType {
	case "int32":
		return arrow.PrimitiveTypes.Int32, nullable, nil
	case "float32":
		return arrow.PrimitiveTypes.Float32, nullable, nil
	case "enum":
		return &arrow.DictionaryType{
			IndexType: arrow.PrimitiveTypes.Int16,
			ValueType: arrow.BinaryTypes.String,
		}, nullable, nil
	case "binary":
		return arrow.BinaryTypes.Binary, nullable, nil
	}

	// At method param level an ArrowSerializable travels as IPC bytes.
	if isArrowSerializable(t) {
		return arrow.BinaryTypes.Binary, nullable, nil
	}

	switch t.Kind() {
	case reflect.String:
		return arrow.BinaryTypes.String, nullable, nil
	case reflect.Bool:
		return arrow.FixedWidthTypes.Boolean, nullable, nil
	case reflect.Int8:
		return arrow.PrimitiveTypes.Int8, nullable, nil
	case reflect.Int16:
		return arrow.PrimitiveTypes.Int16, nullable, nil
	case reflect.Int32:
		return arrow.PrimitiveTypes.Int32, nullable, nil
	case reflect.Int64, reflect.Int:
		return arrow.PrimitiveTypes.Int64, nullable, nil
	case reflect.Uint8:
		return arrow.PrimitiveTypes.Uint8, nullable, nil
	case reflect.Uint16:
		return arrow.PrimitiveTypes.Uint16, nullable, nil
	case reflect.Uint32:
		return arrow.PrimitiveTypes.Uint32, nullable, nil
	case reflect.Uint64, reflect.Uint:
		return arrow.PrimitiveTypes.Uint64, nullable, nil
	case reflect.Float32:
		return arrow.PrimitiveTypes.Float32, nullable, nil
	case reflect.Float64:
		return arrow.PrimitiveTypes.Float64, nullable, nil
	case reflect.Slice:
		if t.Elem() == reflect.TypeFor[byte]() {
			return arrow.BinaryTypes.Binary, nullable, nil
		}
		elemType, _, err := goTypeToArrowType(t.Elem(), tagInfo{})
		if err != nil {
			return nil, false, fmt.Errorf("list element: %w", err)
		}
		return arrow.ListOf(elemType), nullable, nil
	case reflect.Map:
		keyType, _, err := goTypeToArrowType(t.Key(), tagInfo{})
		if err != nil {
			return nil, false, fmt.Errorf("map key: %w", err)
		}
		valType, _, err := goTypeToArrowType(t.Elem(), tagInfo{})
		if err != nil {
			return nil, false, fmt.Errorf("map value: %w", err)
		}
		return arrow.MapOf(keyType, valType), nullable, nil
	default:
		return nil, false, fmt.Errorf("unsupported Go type: %v (kind: %v)", t, t.Kind())
	}
}

// paramFields returns the vgirpc-tagged fields of a params struct in
// declaration order, paired with their parsed tags.
func paramFields(t reflect.Type) ([]reflect.StructField, []tagInfo) {
	var fields []reflect.StructField
	var tags []tagInfo
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("vgirpc")
		if tag == "" || tag == "-" {
			continue
		}
		fields = append(fields, f)
		tags = append(tags, parseTag(tag))
	}
	return fields, tags
}

// structToSchema builds an Arrow schema from a Go struct type using vgirpc tags.
func structToSchema(t reflect.Type) (*arrow.Schema, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct type, got %v", t.Kind())
	}
	goFields, tags := paramFields(t)
	fields := make([]arrow.Field, 0, len(goFields))
	for i, f := range goFields {
		arrowType, nullable, err := goTypeToArrowType(f.Type, tags[i])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields = append(fields, arrow.Field{
			Name:     tags[i].Name,
			Type:     arrowType,
			Nullable: nullable,
		})
	}
	return arrow.NewSchema(fields, nil), nil
}

// resultSchema builds an Arrow schema for a return type.
func resultSchema(t reflect.Type) (*arrow.Schema, error) {
	if t == nil {
		return arrow.NewSchema(nil, nil), nil
	}
	arrowType, nullable, err := goTypeToArrowType(t, tagInfo{})
	if err != nil {
		return nil, fmt.Errorf("result type: %w", err)
	}
	return arrow.NewSchema([]arrow.Field{
		{Name: "result", Type: arrowType, Nullable: nullable},
	}, nil), nil
}

// deserializeParams reads row 0 from a record batch into a Go struct.
func deserializeParams(batch arrow.RecordBatch, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	result := reflect.New(target).Elem()

	for i := range target.NumField() {
		f := target.Field(i)
		tag := f.Tag.Get("vgirpc")
		if tag == "" || tag == "-" {
			continue
		}
		info := parseTag(tag)

		colIdx := -1
		if batch.NumRows() > 0 {
			if idx := batch.Schema().FieldIndices(info.Name); len(idx) > 0 {
				colIdx = idx[0]
			}
		}
		if colIdx == -1 || batch.Column(colIdx).IsNull(0) {
			if info.Default != nil {
				if err := setFieldFromString(result.Field(i), f.Type, *info.Default); err != nil {
					return reflect.Value{}, fmt.Errorf("default for %s: %w", info.Name, err)
				}
			}
			continue
		}

		if err := setFieldFromArrow(result.Field(i), f.Type, batch.Column(colIdx), 0, info); err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", info.Name, err)
		}
	}
	return result, nil
}

// assign stores a value into field through set, allocating first when the
// field is a pointer.
func assign(field reflect.Value, fieldType reflect.Type, isPtr bool, set func(reflect.Value) error) error {
	if !isPtr {
		return set(field)
	}
	ptr := reflect.New(fieldType)
	if err := set(ptr.Elem()); err != nil {
		return err
	}
	field.Set(ptr)
	return nil
}

// setSigned stores n into an integer or float value, rejecting overflow.
func setSigned(v reflect.Value, n int64) error {
	switch {
	case v.CanInt():
		if v.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %v", n, v.Type())
		}
		v.SetInt(n)
	case v.CanUint():
		if n < 0 || v.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %v", n, v.Type())
		}
		v.SetUint(uint64(n))
	case v.CanFloat():
		v.SetFloat(float64(n))
	default:
		return fmt.Errorf("cannot store integer in %v", v.Type())
	}
	return nil
}

// setUnsigned stores n into an integer or float value, rejecting overflow.
func setUnsigned(v reflect.Value, n uint64) error {
	switch {
	case v.CanUint():
		if v.OverflowUint(n) {
			return fmt.Errorf("value %d overflows %v", n, v.Type())
		}
		v.SetUint(n)
	case v.CanInt():
		if n > 1<<63-1 || v.OverflowInt(int64(n)) {
			return fmt.Errorf("value %d overflows %v", n, v.Type())
		}
		v.SetInt(int64(n))
	case v.CanFloat():
		v.SetFloat(float64(n))
	default:
		return fmt.Errorf("cannot store integer in %v", v.Type())
	}
	return nil
}

func setFloat(v reflect.Value, f float64) error {
	if !v.CanFloat() {
		return fmt.Errorf("cannot store float in %v", v.Type())
	}
	v.SetFloat(f)
	return nil
}

func setString(v reflect.Value, s string) error {
	if v.Kind() != reflect.String {
		return fmt.Errorf("cannot store string in %v", v.Type())
	}
	v.SetString(s)
	return nil
}

// setFieldFromArrow sets a struct field value from an Arrow array at index idx.
func setFieldFromArrow(field reflect.Value, fieldType reflect.Type, col arrow.Array, idx int, info tagInfo) error {
	isPtr := fieldType.Kind() == reflect.Ptr
	if isPtr {
		fieldType = fieldType.Elem()
	}

	if isArrowSerializable(fieldType) {
		switch c := col.(type) {
		case *array.Binary:
			val, err := deserializeArrowSerializable(fieldType, c.Value(idx))
			if err != nil {
				return err
			}
			return assign(field, fieldType, isPtr, func(v reflect.Value) error {
				v.Set(val)
				return nil
			})
		case *array.Struct:
			return assign(field, fieldType, isPtr, func(v reflect.Value) error {
				return setStructValue(v, c, idx)
			})
		default:
			return fmt.Errorf("expected Binary or Struct array for ArrowSerializable, got %T", col)
		}
	}

	return assign(field, fieldType, isPtr, func(v reflect.Value) error {
		switch c := col.(type) {
		case *array.String:
			return setString(v, c.Value(idx))
		case *array.Dictionary:
			dict, ok := c.Dictionary().(*array.String)
			if !ok {
				return fmt.Errorf("expected string dictionary, got %T", c.Dictionary())
			}
			return setString(v, dict.Value(c.GetValueIndex(idx)))
		case *array.Boolean:
			if v.Kind() != reflect.Bool {
				return fmt.Errorf("cannot store bool in %v", v.Type())
			}
			v.SetBool(c.Value(idx))
			return nil
		case *array.Int8:
			return setSigned(v, int64(c.Value(idx)))
		case *array.Int16:
			return setSigned(v, int64(c.Value(idx)))
		case *array.Int32:
			return setSigned(v, int64(c.Value(idx)))
		case *array.Int64:
			return setSigned(v, c.Value(idx))
		case *array.Uint8:
			return setUnsigned(v, uint64(c.Value(idx)))
		case *array.Uint16:
			return setUnsigned(v, uint64(c.Value(idx)))
		case *array.Uint32:
			return setUnsigned(v, uint64(c.Value(idx)))
		case *array.Uint64:
			return setUnsigned(v, c.Value(idx))
		case *array.Float32:
			return setFloat(v, float64(c.Value(idx)))
		case *array.Float64:
			return setFloat(v, c.Value(idx))
		case *array.Binary:
			if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Uint8 {
				return fmt.Errorf("cannot store bytes in %v", v.Type())
			}
			v.SetBytes(bytes.Clone(c.Value(idx)))
			return nil
		case *array.List:
			return setListValue(v, c, idx)
		case *array.Map:
			return setMapValue(v, c, idx)
		case *array.Struct:
			return setStructValue(v, c, idx)
		default:
			return fmt.Errorf("unsupported Arrow array type: %T", col)
		}
	})
}

func setListValue(v reflect.Value, listArr *array.List, idx int) error {
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("cannot store list in %v", v.Type())
	}
	start, end := listArr.ValueOffsets(idx)
	values := listArr.ListValues()
	length := int(end - start)

	slice := reflect.MakeSlice(v.Type(), length, length)
	for j := range length {
		if values.IsNull(int(start) + j) {
			continue
		}
		if err := setFieldFromArrow(slice.Index(j), v.Type().Elem(), values, int(start)+j, tagInfo{}); err != nil {
			return fmt.Errorf("list element [%d]: %w", j, err)
		}
	}
	v.Set(slice)
	return nil
}

func setStructValue(v reflect.Value, structArr *array.Struct, idx int) error {
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("cannot store struct in %v", v.Type())
	}
	structType := structArr.DataType().(*arrow.StructType)
	for fi := range v.NumField() {
		goField := v.Type().Field(fi)
		arrowTag := goField.Tag.Get("arrow")
		if arrowTag == "" {
			continue
		}
		childIdx, ok := structType.FieldIdx(arrowTag)
		if !ok {
			continue
		}
		childArr := structArr.Field(childIdx)
		if childArr.IsNull(idx) {
			continue
		}
		if err := setFieldFromArrow(v.Field(fi), goField.Type, childArr, idx, tagInfo{}); err != nil {
			return fmt.Errorf("struct field %s: %w", arrowTag, err)
		}
	}
	return nil
}

func setMapValue(v reflect.Value, mapArr *array.Map, idx int) error {
	if v.Kind() != reflect.Map {
		return fmt.Errorf("cannot store map in %v", v.Type())
	}
	start, end := mapArr.ValueOffsets(idx)
	keys := mapArr.Keys()
	items := mapArr.Items()
	length := int(end - start)

	m := reflect.MakeMapWithSize(v.Type(), length)
	for j := range length {
		k := reflect.New(v.Type().Key()).Elem()
		val := reflect.New(v.Type().Elem()).Elem()
		if err := setFieldFromArrow(k, v.Type().Key(), keys, int(start)+j, tagInfo{}); err != nil {
			return fmt.Errorf("map key [%d]: %w", j, err)
		}
		if err := setFieldFromArrow(val, v.Type().Elem(), items, int(start)+j, tagInfo{}); err != nil {
			return fmt.Errorf("map value [%d]: %w", j, err)
		}
		m.SetMapIndex(k, val)
	}
	v.Set(m)
	return nil
}

// setFieldFromString sets a struct field from a string default value.
func setFieldFromString(field reflect.Value, fieldType reflect.Type, s string) error {
	isPtr := fieldType.Kind() == reflect.Ptr
	if isPtr {
		fieldType = fieldType.Elem()
	}
	return assign(field, fieldType, isPtr, func(v reflect.Value) error {
		switch {
		case v.Kind() == reflect.String:
			v.SetString(s)
		case v.Kind() == reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("parsing bool default %q: %w", s, err)
			}
			v.SetBool(b)
		case v.CanInt():
			n, err := strconv.ParseInt(s, 0, v.Type().Bits())
			if err != nil {
				return fmt.Errorf("parsing int default %q: %w", s, err)
			}
			v.SetInt(n)
		case v.CanUint():
			n, err := strconv.ParseUint(s, 0, v.Type().Bits())
			if err != nil {
				return fmt.Errorf("parsing uint default %q: %w", s, err)
			}
			v.SetUint(n)
		case v.CanFloat():
			f, err := strconv.ParseFloat(s, v.Type().Bits())
			if err != nil {
				return fmt.Errorf("parsing float default %q: %w", s, err)
			}
			v.SetFloat(f)
		default:
			return fmt.Errorf("default value parsing not supported for %v", v.Kind())
		}
		return nil
	})
}

// serializeResult builds a 1-row record batch with a single "result" column.
func serializeResult(schema *arrow.Schema, value any) (arrow.RecordBatch, error) {
	if schema.NumFields() == 0 {
		return array.NewRecordBatch(schema, nil, 0), nil
	}

	arr, err := buildArray(memory.NewGoAllocator(), schema.Field(0).Type, value)
	if err != nil {
		return nil, fmt.Errorf("serialize result: %w", err)
	}
	defer arr.Release()

	return array.NewRecordBatch(schema, []arrow.Array{arr}, 1), nil
}

// buildArray creates a 1-element Arrow array from a Go value.
func buildArray(mem memory.Allocator, dt arrow.DataType, value any) (arrow.Array, error) {
	b := array.NewBuilder(mem, dt)
	defer b.Release()
	if err := appendToBuilder(b, dt, value); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

// appendToBuilder appends a single value to an Arrow array builder.
// Numeric values are converted through reflection, so named types such as
// a uint16-backed character type marshal like their underlying kind.
func appendToBuilder(b array.Builder, dt arrow.DataType, value any) error {
	if value == nil {
		b.AppendNull()
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr && !isArrowSerializable(rv.Type()) {
		if rv.IsNil() {
			b.AppendNull()
			return nil
		}
		rv = rv.Elem()
		value = rv.Interface()
	}

	switch dt.ID() {
	case arrow.STRING:
		if rv.Kind() == reflect.String {
			b.(*array.StringBuilder).Append(rv.String())
		} else {
			b.(*array.StringBuilder).Append(fmt.Sprint(value))
		}
	case arrow.BOOL:
		if rv.Kind() != reflect.Bool {
			return fmt.Errorf("cannot convert %T to bool", value)
		}
		b.(*array.BooleanBuilder).Append(rv.Bool())
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		n, err := toInt64(rv)
		if err != nil {
			return err
		}
		switch bb := b.(type) {
		case *array.Int8Builder:
			bb.Append(int8(n))
		case *array.Int16Builder:
			bb.Append(int16(n))
		case *array.Int32Builder:
			bb.Append(int32(n))
		case *array.Int64Builder:
			bb.Append(n)
		}
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		n, err := toUint64(rv)
		if err != nil {
			return err
		}
		switch bb := b.(type) {
		case *array.Uint8Builder:
			bb.Append(uint8(n))
		case *array.Uint16Builder:
			bb.Append(uint16(n))
		case *array.Uint32Builder:
			bb.Append(uint32(n))
		case *array.Uint64Builder:
			bb.Append(n)
		}
	case arrow.FLOAT32, arrow.FLOAT64:
		f, err := toFloat64(rv)
		if err != nil {
			return err
		}
		if fb, ok := b.(*array.Float32Builder); ok {
			fb.Append(float32(f))
		} else {
			b.(*array.Float64Builder).Append(f)
		}
	case arrow.BINARY:
		if as, ok := value.(ArrowSerializable); ok {
			data, err := serializeArrowSerializable(as)
			if err != nil {
				return err
			}
			b.(*array.BinaryBuilder).Append(data)
		} else if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			b.(*array.BinaryBuilder).Append(rv.Bytes())
		} else {
			return fmt.Errorf("cannot convert %T to binary", value)
		}
	case arrow.LIST:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("cannot convert %T to list", value)
		}
		lb := b.(*array.ListBuilder)
		lb.Append(true)
		vb := lb.ValueBuilder()
		elemType := dt.(*arrow.ListType).Elem()
		for i := range rv.Len() {
			if err := appendToBuilder(vb, elemType, rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("list element [%d]: %w", i, err)
			}
		}
	case arrow.MAP:
		if rv.Kind() != reflect.Map {
			return fmt.Errorf("cannot convert %T to map", value)
		}
		mt := dt.(*arrow.MapType)
		mb := b.(*array.MapBuilder)
		mb.Append(true)
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			if err := appendToBuilder(mb.KeyBuilder(), mt.KeyType(), k.Interface()); err != nil {
				return fmt.Errorf("map key: %w", err)
			}
			if err := appendToBuilder(mb.ItemBuilder(), mt.ItemType(), rv.MapIndex(k).Interface()); err != nil {
				return fmt.Errorf("map value: %w", err)
			}
		}
	case arrow.DICTIONARY:
		db, ok := b.(*array.BinaryDictionaryBuilder)
		if !ok {
			return fmt.Errorf("unsupported dictionary builder %T", b)
		}
		return db.AppendString(fmt.Sprint(value))
	case arrow.STRUCT:
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		sb := b.(*array.StructBuilder)
		sb.Append(true)
		st := dt.(*arrow.StructType)
		for ci := range st.NumFields() {
			sf := st.Field(ci)
			fv, ok := arrowFieldValue(rv, sf.Name)
			if !ok {
				sb.FieldBuilder(ci).AppendNull()
				continue
			}
			if err := appendToBuilder(sb.FieldBuilder(ci), sf.Type, fv); err != nil {
				return fmt.Errorf("struct field %s: %w", sf.Name, err)
			}
		}
	default:
		return fmt.Errorf("unsupported type in appendToBuilder: %v", dt)
	}
	return nil
}

// arrowFieldValue finds a Go struct field value by its "arrow" tag.
func arrowFieldValue(rv reflect.Value, arrowName string) (any, bool) {
	rt := rv.Type()
	for i := range rt.NumField() {
		if rt.Field(i).Tag.Get("arrow") == arrowName {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

// serializeArrowSerializable converts an ArrowSerializable value to IPC stream bytes.
func serializeArrowSerializable(as ArrowSerializable) ([]byte, error) {
	schema := as.ArrowSchema()
	mem := memory.NewGoAllocator()

	rv := reflect.ValueOf(as)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	cols := make([]arrow.Array, schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, f := range schema.Fields() {
		val, ok := arrowFieldValue(rv, f.Name)
		if !ok {
			return nil, fmt.Errorf("no field with arrow tag %q", f.Name)
		}
		arr, err := buildArray(mem, f.Type, val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		cols[i] = arr
	}

	batch := array.NewRecordBatch(schema, cols, 1)
	defer batch.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := w.Write(batch); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeArrowSerializable reads IPC stream bytes into an ArrowSerializable Go struct.
func deserializeArrowSerializable(targetType reflect.Type, data []byte) (reflect.Value, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("reading ArrowSerializable IPC: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		return reflect.Value{}, fmt.Errorf("no batch in ArrowSerializable IPC stream")
	}
	batch := reader.RecordBatch()

	result := reflect.New(targetType).Elem()
	for i := range targetType.NumField() {
		f := targetType.Field(i)
		tag := f.Tag.Get("arrow")
		if tag == "" {
			continue
		}
		indices := batch.Schema().FieldIndices(tag)
		if len(indices) == 0 {
			continue
		}
		col := batch.Column(indices[0])
		if col.IsNull(0) {
			continue
		}
		if err := setFieldFromArrow(result.Field(i), f.Type, col, 0, tagInfo{}); err != nil {
			return reflect.Value{}, fmt.Errorf("ArrowSerializable field %s: %w", tag, err)
		}
	}
	return result, nil
}

// Numeric conversion helpers

func toInt64(rv reflect.Value) (int64, error) {
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		return int64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("cannot convert %v to int64", rv.Type())
	}
}

func toUint64(rv reflect.Value) (uint64, error) {
	switch {
	case rv.CanUint():
		return rv.Uint(), nil
	case rv.CanInt():
		return uint64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("cannot convert %v to uint64", rv.Type())
	}
}

func toFloat64(rv reflect.Value) (float64, error) {
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("cannot convert %v to float64", rv.Type())
	}
}
