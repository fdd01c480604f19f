// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Describe schema field definitions.
var describeSchema = arrow.NewSchema([]arrow.Field{
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "method_type", Type: arrow.BinaryTypes.String},
	{Name: "doc", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "has_return", Type: &arrow.BooleanType{}},
	{Name: "params_schema_ipc", Type: arrow.BinaryTypes.Binary},
	{Name: "result_schema_ipc", Type: arrow.BinaryTypes.Binary},
	{Name: "param_types_json", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "param_defaults_json", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "has_header", Type: &arrow.BooleanType{}},
	{Name: "header_schema_ipc", Type: arrow.BinaryTypes.Binary, Nullable: true},
}, nil)

// Describe metadata keys.
const (
	MetaProtocolName    = "vgi_rpc.protocol_name"
	MetaDescribeVersion = "vgi_rpc.describe_version"
	DescribeVersion     = "2"
)

// MethodDescription is one row of the __describe__ response.
type MethodDescription struct {
	Name          string            `json:"name" yaml:"name"`
	MethodType    string            `json:"method_type" yaml:"method_type"`
	Doc           string            `json:"doc,omitempty" yaml:"doc,omitempty"`
	HasReturn     bool              `json:"has_return" yaml:"has_return"`
	ParamTypes    map[string]string `json:"param_types,omitempty" yaml:"param_types,omitempty"`
	ParamDefaults map[string]any    `json:"param_defaults,omitempty" yaml:"param_defaults,omitempty"`
	ResultType    string            `json:"result_type,omitempty" yaml:"result_type,omitempty"`
}

// serializeSchema serializes an Arrow schema to IPC format bytes.
func serializeSchema(schema *arrow.Schema) []byte {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	w.Close()
	return buf.Bytes()
}

// describeMethod builds the description of one registered method.
func describeMethod(info *methodInfo) MethodDescription {
	d := MethodDescription{
		Name:       info.Name,
		MethodType: DispatchMethodUnary,
		Doc:        info.Doc,
		HasReturn:  info.ResultType != nil,
	}
	if info.ParamsSchema.NumFields() > 0 {
		d.ParamTypes = make(map[string]string, info.ParamsSchema.NumFields())
		for _, f := range info.ParamsSchema.Fields() {
			d.ParamTypes[f.Name] = arrowTypeToString(f.Type)
		}
	}
	if len(info.ParamDefaults) > 0 {
		d.ParamDefaults = make(map[string]any, len(info.ParamDefaults))
		for k, v := range info.ParamDefaults {
			d.ParamDefaults[k] = coerceDefaultValue(v, info.ParamsSchema, k)
		}
	}
	if info.ResultSchema.NumFields() > 0 {
		d.ResultType = arrowTypeToString(info.ResultSchema.Field(0).Type)
	}
	return d
}

// Describe returns a description of every registered method, sorted by name.
func (s *Server) Describe() []MethodDescription {
	names := s.Methods()
	out := make([]MethodDescription, 0, len(names))
	for _, name := range names {
		out = append(out, describeMethod(s.methods[name]))
	}
	return out
}

// marshalOrNull appends the JSON form of v, or null when v is empty.
func marshalOrNull[M ~map[string]V, V any](b *array.StringBuilder, m M) {
	if len(m) == 0 {
		b.AppendNull()
		return
	}
	data, err := json.Marshal(m)
	if err != nil {
		slog.Error("describe: marshal JSON", "err", err)
		b.AppendNull()
		return
	}
	b.Append(string(data))
}

// buildDescribeBatch builds the __describe__ response batch and metadata.
func (s *Server) buildDescribeBatch() (arrow.RecordBatch, arrow.Metadata) {
	mem := memory.NewGoAllocator()
	rb := array.NewRecordBuilder(mem, describeSchema)
	defer rb.Release()

	names := s.Methods()
	for _, name := range names {
		info := s.methods[name]
		d := describeMethod(info)

		rb.Field(0).(*array.StringBuilder).Append(d.Name)
		rb.Field(1).(*array.StringBuilder).Append(d.MethodType)
		if d.Doc != "" {
			rb.Field(2).(*array.StringBuilder).Append(d.Doc)
		} else {
			rb.Field(2).AppendNull()
		}
		rb.Field(3).(*array.BooleanBuilder).Append(d.HasReturn)
		rb.Field(4).(*array.BinaryBuilder).Append(serializeSchema(info.ParamsSchema))
		rb.Field(5).(*array.BinaryBuilder).Append(serializeSchema(info.ResultSchema))
		marshalOrNull(rb.Field(6).(*array.StringBuilder), d.ParamTypes)
		marshalOrNull(rb.Field(7).(*array.StringBuilder), d.ParamDefaults)
		rb.Field(8).(*array.BooleanBuilder).Append(false)
		rb.Field(9).AppendNull()
	}

	cols := make([]arrow.Array, len(rb.Fields()))
	for i, fb := range rb.Fields() {
		cols[i] = fb.NewArray()
		defer cols[i].Release()
	}
	batch := array.NewRecordBatch(describeSchema, cols, int64(len(names)))

	keys := []string{MetaProtocolName, MetaRequestVersion, MetaDescribeVersion}
	vals := []string{s.protocolName(), ProtocolVersion, DescribeVersion}
	if s.serverID != "" {
		keys = append(keys, MetaServerID)
		vals = append(vals, s.serverID)
	}
	return batch, arrow.NewMetadata(keys, vals)
}

// protocolName is the service name reported by introspection.
func (s *Server) protocolName() string {
	if s.serviceName != "" {
		return s.serviceName
	}
	return "GoRpcServer"
}

// parseDescribeBatch decodes a __describe__ response batch.
func parseDescribeBatch(batch arrow.RecordBatch) ([]MethodDescription, error) {
	if !batch.Schema().Equal(describeSchema) {
		return nil, fmt.Errorf("unexpected describe schema: %v", batch.Schema())
	}
	names := batch.Column(0).(*array.String)
	types := batch.Column(1).(*array.String)
	docs := batch.Column(2).(*array.String)
	hasReturn := batch.Column(3).(*array.Boolean)
	resultSchemas := batch.Column(5).(*array.Binary)
	paramTypes := batch.Column(6).(*array.String)
	paramDefaults := batch.Column(7).(*array.String)

	out := make([]MethodDescription, 0, batch.NumRows())
	for i := range int(batch.NumRows()) {
		d := MethodDescription{
			Name:       names.Value(i),
			MethodType: types.Value(i),
			HasReturn:  hasReturn.Value(i),
		}
		if docs.IsValid(i) {
			d.Doc = docs.Value(i)
		}
		if paramTypes.IsValid(i) {
			if err := json.Unmarshal([]byte(paramTypes.Value(i)), &d.ParamTypes); err != nil {
				return nil, fmt.Errorf("method %s: param types: %w", d.Name, err)
			}
		}
		if paramDefaults.IsValid(i) {
			if err := json.Unmarshal([]byte(paramDefaults.Value(i)), &d.ParamDefaults); err != nil {
				return nil, fmt.Errorf("method %s: param defaults: %w", d.Name, err)
			}
		}
		if rs, err := ipc.NewReader(bytes.NewReader(resultSchemas.Value(i))); err == nil {
			if schema := rs.Schema(); schema.NumFields() > 0 {
				d.ResultType = arrowTypeToString(schema.Field(0).Type)
			}
			rs.Release()
		}
		out = append(out, d)
	}
	return out, nil
}

// coerceDefaultValue converts a string default to its proper JSON type
// based on the Arrow schema field type.
func coerceDefaultValue(val string, schema *arrow.Schema, fieldName string) any {
	indices := schema.FieldIndices(fieldName)
	if len(indices) == 0 {
		return val
	}
	switch schema.Field(indices[0]).Type.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		if v, err := strconv.ParseInt(val, 0, 64); err == nil {
			return v
		}
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		if v, err := strconv.ParseUint(val, 0, 64); err == nil {
			return v
		}
	case arrow.FLOAT64, arrow.FLOAT32:
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			return v
		}
	case arrow.BOOL:
		if v, err := strconv.ParseBool(val); err == nil {
			return v
		}
	}
	return val
}

// arrowTypeToString returns a human-readable type name for an Arrow type.
func arrowTypeToString(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.STRING:
		return "string"
	case arrow.INT8:
		return "int8"
	case arrow.INT16:
		return "int16"
	case arrow.INT32:
		return "int32"
	case arrow.INT64:
		return "int"
	case arrow.UINT8:
		return "uint8"
	case arrow.UINT16:
		return "uint16"
	case arrow.UINT32:
		return "uint32"
	case arrow.UINT64:
		return "uint64"
	case arrow.FLOAT32:
		return "float32"
	case arrow.FLOAT64:
		return "float"
	case arrow.BOOL:
		return "bool"
	case arrow.BINARY:
		return "bytes"
	case arrow.LIST:
		lt := dt.(*arrow.ListType)
		return "list[" + arrowTypeToString(lt.Elem()) + "]"
	case arrow.MAP:
		mt := dt.(*arrow.MapType)
		return "dict[" + arrowTypeToString(mt.KeyType()) + ", " + arrowTypeToString(mt.ItemType()) + "]"
	case arrow.DICTIONARY:
		return "enum"
	default:
		return dt.String()
	}
}
