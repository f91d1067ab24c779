package main

import (
	"os"

	"github.com/mark/canvas-dsl/cmd/canvasdsl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
