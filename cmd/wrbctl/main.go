package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/wr-burden-mcp-server/cmd/wrbctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
