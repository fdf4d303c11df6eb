// Command entra-login serves Microsoft Entra ID sign in for local accounts
// and manages its settings and accounts.
package main

import (
	"fmt"
	"os"
)

// version can be set during build with -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
