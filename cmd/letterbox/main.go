package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit codes: 1 for errors that stop a command, 2 when a pass finished with
// failed items, 130 when interrupted.
const (
	exitError       = 1
	exitItemsFailed = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, errItemsFailed):
		fmt.Fprintln(os.Stderr, "letterbox:", err)
		return exitItemsFailed
	default:
		fmt.Fprintln(os.Stderr, "letterbox:", err)
		return exitError
	}
}
