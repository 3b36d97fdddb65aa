// Command docctl runs the document pipeline on local files with in-memory state.
package main

import (
	"fmt"
	"os"

	"github.com/kirillkom/fincadocs/internal/config"
)

func main() {
	if err := newRootCommand(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
