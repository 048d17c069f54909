package main

import (
	"os"

	"github.com/vertool/vertool/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		formatter := errors.NewFormatter(os.Stderr, noColor)
		os.Stderr.WriteString(formatter.Format(err))
		os.Exit(1)
	}
}
