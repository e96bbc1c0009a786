// Command meshjoin enriches a stream of sales transactions with customer and
// product reference data and writes one result row per order id.
//
//	meshjoin validate --config pipeline.yaml
//	meshjoin run --config pipeline.yaml --metrics-backend pushgateway -v
package main

import (
	"os"

	"github.com/fatih/color"

	// every storage backend is selectable from the pipeline file.
	_ "meshjoin/internal/storage/all"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "meshjoin: %v\n", err)
		os.Exit(1)
	}
}
