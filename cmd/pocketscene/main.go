// Command pocketscene runs the pocket scripting computer's scene engine in
// a terminal simulator, or runs scripts headless.
//
// Usage:
//
//	pocketscene [--config pocketscene.json] [--debug] [--log FILE]
//	pocketscene run FILE
//	pocketscene ls [DIR]
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
