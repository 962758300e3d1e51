// Command kerbin is the editor's CLI entry point: info/install/rebuild
// around the engine, per spec.md §6. Grounded on the absence of a
// wrapper main in the teacher beyond NewRootCmd().Execute() convention
// used throughout its benchmark runners.
package main

import (
	"fmt"
	"os"

	"kerbin/internal/kerbcli"
)

func main() {
	if err := kerbcli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
