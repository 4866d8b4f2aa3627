// CratePack - 3D load planner
//
// Packs boxes into pallets, crates and shipping containers, searches for a
// good loading order with a genetic optimizer and exports load plans.
//
// Build:
//
//	go build -o cratepack ./cmd/cratepack
//
// Examples:
//
//	cratepack pack --boxes order.csv --container "EUR pallet 120x80 (h 180)" --out plan.pdf
//	cratepack optimize --boxes order.xlsx --bin 589x239x235 --generations 200 --chart progress.png
//	cratepack serve
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
