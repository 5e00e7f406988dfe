package main

import (
	"os"

	"github.com/tkingovr/envgate/cmd/envgate/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
