// main is the entry point for the cohortpulse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/cohortpulse/cohortpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
