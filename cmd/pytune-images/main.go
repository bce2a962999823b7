// cmd/pytune-images/main.go
package main

import (
	"github.com/gdefombelle/pytune-helpers-images/pkg/cli"
)

func main() {
	// Execute CLI
	cli.Execute()
}
