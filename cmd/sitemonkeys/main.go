package main

import (
	"os"

	"github.com/XtremePossibility/sitemonkeys-ai-system/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
