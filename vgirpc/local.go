// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package vgirpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// CallJSON invokes method in process through the full wire path. params is
// a JSON object keyed by wire parameter name; omitted parameters take their
// declared defaults. The result comes back JSON-encoded, "null" for void
// methods, along with the log messages the handler emitted.
func (s *Server) CallJSON(ctx context.Context, method string, params []byte) ([]byte, []LogMessage, error) {
	info, ok := s.methods[method]
	if !ok {
		return nil, nil, &RpcError{
			Type:    "AttributeError",
			Message: fmt.Sprintf("Unknown method: '%s'", method),
		}
	}

	pv, err := paramsFromJSON(info.ParamsType, params)
	if err != nil {
		return nil, nil, &RpcError{Type: "TypeError", Message: err.Error()}
	}

	var reqBuf, respBuf bytes.Buffer
	if err := EncodeRequest(&reqBuf, method, pv.Interface(), "local", LogTrace); err != nil {
		return nil, nil, err
	}
	if err := s.serveOne(ctx, &reqBuf, &respBuf); err != nil {
		return nil, nil, err
	}
	resp, err := ReadResponse(&respBuf)
	var logs []LogMessage
	if resp != nil {
		logs = resp.Logs
	}
	if err != nil {
		return nil, logs, err
	}
	defer resp.Release()

	if info.ResultType == nil {
		return []byte("null"), logs, nil
	}
	result := reflect.New(info.ResultType).Elem()
	if col := resp.Batch.Column(0); !col.IsNull(0) {
		if err := setFieldFromArrow(result, info.ResultType, col, 0, tagInfo{}); err != nil {
			return nil, logs, fmt.Errorf("decoding result of %s: %w", method, err)
		}
	}
	out, err := json.Marshal(result.Interface())
	if err != nil {
		return nil, logs, fmt.Errorf("encoding result of %s: %w", method, err)
	}
	return out, logs, nil
}

// paramsFromJSON fills a params struct from a JSON object keyed by wire name.
func paramsFromJSON(t reflect.Type, data []byte) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return reflect.Value{}, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}

	fields, tags := paramFields(t)
	known := make(map[string]bool, len(fields))
	for i, f := range fields {
		known[tags[i].Name] = true
		field := v.FieldByIndex(f.Index)
		if msg, ok := raw[tags[i].Name]; ok {
			if err := json.Unmarshal(msg, field.Addr().Interface()); err != nil {
				return reflect.Value{}, fmt.Errorf("param %s: %w", tags[i].Name, err)
			}
			continue
		}
		if tags[i].Default != nil {
			if err := setFieldFromString(field, f.Type, *tags[i].Default); err != nil {
				return reflect.Value{}, fmt.Errorf("default for %s: %w", tags[i].Name, err)
			}
		}
	}

	var unknown []string
	for name := range raw {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return reflect.Value{}, fmt.Errorf("unknown params: %s", strings.Join(unknown, ", "))
	}
	return v, nil
}
