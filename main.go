// Package main is the entry point for atalkdump.
package main

import (
	"os"

	"firestige.xyz/atalkdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
