package main

import (
	"os"

	"github.com/jvre/memberd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
