// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

const (
	formatFlagName = "format"

	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML = "yaml"
)

func newDescribeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "List the registered RPC methods",
		Long:  "List every registered RPC method with its parameters, defaults and result type.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadServeConfig(viper.GetViper())
			if err != nil {
				return err
			}
			return writeDescriptions(cmd.OutOrStdout(), newFixtureServer(cfg).Describe(), format)
		},
	}
	cmd.Flags().StringVarP(&format, formatFlagName, "f", formatText, "output format: text, table, json or yaml")
	return cmd
}

func writeDescriptions(w io.Writer, methods []vgirpc.MethodDescription, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(methods)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(methods); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		for _, m := range methods {
			fmt.Fprintf(w, "%s(%s) -> %s\n", m.Name, formatParams(m), resultOf(m))
		}
		return nil
	case formatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Method", "Params", "Result", "Doc"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)
		for _, m := range methods {
			table.Append([]string{m.Name, formatParams(m), resultOf(m), m.Doc})
		}
		table.SetFooter([]string{fmt.Sprintf("Total %d", len(methods)), "", "", ""})
		table.Render()
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func resultOf(m vgirpc.MethodDescription) string {
	if !m.HasReturn {
		return "void"
	}
	return m.ResultType
}

func formatParams(m vgirpc.MethodDescription) string {
	names := make([]string, 0, len(m.ParamTypes))
	for name := range m.ParamTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		p := name + ": " + m.ParamTypes[name]
		if dv, ok := m.ParamDefaults[name]; ok {
			p += fmt.Sprintf(" = %v", dv)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}
