// The main package for the corpusmill executable.
package main

import (
	"github.com/parkerlow/corpusmill/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
