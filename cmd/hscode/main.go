// Command hscode is the unified CLI for the HSCode-Intelligence platform:
// classification against a running API server, the API server itself,
// offline evaluation runs and schema migrations.
package main

import (
	"os"

	"github.com/turtacn/HSCode-Intelligence/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
