package main

import (
	"fmt"
	"os"

	"github.com/daehwan-oh/coverfact/internal/cli"
	"github.com/daehwan-oh/coverfact/internal/model"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Gate failures are contractual refusals, not runtime errors, and
		// get their own exit status for scripting.
		if model.IsGateError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
