package main

import (
	"os"

	"github.com/mailrelay-systems/mailrelay-stack/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
