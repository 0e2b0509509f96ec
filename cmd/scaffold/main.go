// Command scaffold serves record collections as a read-only JSON API and
// runs their maintenance tasks: migrations, integrity validation and xlsx
// export.
//
// Collections are declared in a YAML file (see config.go):
//
//	scaffold migrate
//	scaffold serve --addr :8080
//	scaffold validate posts
//	scaffold export posts --out posts.xlsx
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
