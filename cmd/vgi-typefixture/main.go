// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Command vgi-typefixture serves the type-marshalling fixture over vgi_rpc.
package main

func main() {
	Execute()
}
