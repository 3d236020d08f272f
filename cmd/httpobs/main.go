// SPDX-License-Identifier: GPL-3.0-or-later

// Command httpobs fetches URLs while observing the HTTP traffic.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "httpobs: %s\n", err.Error())
		os.Exit(1)
	}
}
