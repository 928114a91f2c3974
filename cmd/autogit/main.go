package main

import (
	"context"
	"fmt"
	"os"
)

const (
	defaultVersion = "dev"
	defaultCommit  = "none"
)

// Version information (set by GoReleaser)
var (
	version = defaultVersion
	commit  = defaultCommit
	dirty   bool
	_       = "unknown" // date - set by GoReleaser but not used
)

func main() {
	initVersion()

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
