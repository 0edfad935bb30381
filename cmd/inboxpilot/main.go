package main

import (
	"os"

	"github.com/nhle/inboxpilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
