package main

import (
	"os"

	"nk-passkey-probe/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
