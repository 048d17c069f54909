// Command vertool-shim is the executable materialised under every shimmed
// binary's name by the Activation Layer (spec §4.K). It never appears on
// disk under its own name: internal/activate.MaterializeShims copies (or
// hardlinks) it to <shims dir>/<tool bin name>, and at invocation it looks
// at its own file name to decide which tool to run.
//
// Based on the "mise-shim" design (github.com/iki/mise-shim, MIT License):
// one compiled binary, reused under every name, that re-execs the resolver
// with the invoked name as its first argument.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

func main() {
	os.Exit(run())
}

func run() int {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vertool-shim: failed to determine executable path: %v\n", err)
		return 1
	}
	tool := filepath.Base(exe)
	if ext := filepath.Ext(tool); ext != "" {
		tool = tool[:len(tool)-len(ext)]
	}

	vertool, err := exec.LookPath("vertool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "vertool-shim: %q is not installed or not on PATH\n", tool)
		fmt.Fprintln(os.Stderr, "vertool-shim: could not find the vertool binary itself")
		return 1
	}

	args := append([]string{"exec", "--", tool}, os.Args[1:]...)
	cmd := exec.Command(vertool, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "vertool-shim: failed to run vertool exec -- %s: %v\n", tool, err)
		return 1
	}
	return 0
}
