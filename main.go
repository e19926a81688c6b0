package main

import (
	"os"

	"github.com/costscope/costscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
