// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Query-farm/vgi-typefixture/vgirpc"
)

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call METHOD [PARAMS_JSON]",
		Short: "Invoke one method in process and print its result",
		Long: `Invoke one method in process through the full Arrow IPC path and print
the result as JSON. PARAMS_JSON is an object keyed by parameter name;
omitted parameters take their defaults. Log messages go to stderr.`,
		Example: `  vgi-typefixture call static_int_method
  vgi-typefixture call static_reverse_int_array '{"array":[3,2,1]}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(viper.GetViper())
			if err != nil {
				return err
			}
			var params []byte
			if len(args) == 2 {
				params = []byte(args[1])
			}

			result, logs, err := newFixtureServer(cfg).CallJSON(cmd.Context(), args[0], params)
			for _, lm := range logs {
				fmt.Fprintln(cmd.ErrOrStderr(), formatLog(lm))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(result))
			return nil
		},
	}
}

func formatLog(lm vgirpc.LogMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", lm.Level, lm.Message)
	keys := make([]string, 0, len(lm.Extras))
	for k := range lm.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, lm.Extras[k])
	}
	return b.String()
}
