// Package main is the keygate client CLI: register, login, check and drop a
// local session against a running keygate server.
package main

import (
	"os"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
