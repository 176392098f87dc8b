package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stackshot/stackshot/internal/adapters/inbound/cli"
	"github.com/stackshot/stackshot/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		// The summary already lists the failing services.
		if !errors.Is(err, domain.ErrServicesFailed) {
			fmt.Fprintln(os.Stderr, "stackshot:", err)
		}
		os.Exit(1)
	}
}
