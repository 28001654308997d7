package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rexster-go/rexster-cli/internal/cmd"
)

const exitInterrupted = 130

var (
	executeCmd  = cmd.Execute
	mapExitCode = cmd.ExitCode
	terminate   = os.Exit
)

// run executes the CLI with args. An interrupt cancels in-flight requests.
func run(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := executeCmd(ctx, args); err != nil {
		if ctx.Err() != nil {
			return exitInterrupted
		}
		return mapExitCode(err)
	}
	return 0
}

func main() {
	terminate(run(context.Background(), os.Args[1:]))
}
