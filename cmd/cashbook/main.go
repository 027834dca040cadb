package main

import (
	"os"

	"cashbook-import-service/cmd/cashbook/cmd"
	"cashbook-import-service/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		if ledgerErr, ok := errors.AsLedgerError(err); ok {
			os.Exit(ledgerErr.ExitCode())
		}
		os.Exit(1)
	}
}
