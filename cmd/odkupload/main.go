package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/odkupload/internal/cli"
	"github.com/example/odkupload/internal/db"
	"github.com/example/odkupload/internal/logging"
)

func main() {
	rootCmd := cli.RootCmd()

	err := rootCmd.Execute()
	logging.Sync()
	db.Close()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
