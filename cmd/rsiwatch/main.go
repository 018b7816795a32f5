package main

import (
	"fmt"
	"os"

	"RSIWatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rsiwatch:", err)
		os.Exit(1)
	}
}
