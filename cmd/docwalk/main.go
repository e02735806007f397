package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("docwalk: %s", err)
		os.Exit(1)
	}
}
