// FaultGate is an HTTP API service built around a composable fault
// mapping layer: errors and panics raised while handling a request are
// converted to RFC 7807 problem responses by ordered, scopeable rules.
package main

import (
	"context"
	"fmt"
	"os"

	"faultgate/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
