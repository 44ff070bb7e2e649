package main

import (
	"fmt"
	"os"

	"github.com/zklr-network/zklr/cmd/zklrd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
