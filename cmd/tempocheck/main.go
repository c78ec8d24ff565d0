package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tempocheck/internal/harness"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exit *harness.ExitError
		if errors.As(err, &exit) {
			// The harness already rendered its diagnostics.
			os.Exit(exit.Code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
