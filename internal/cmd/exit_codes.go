package cmd

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rexster-go/rexster-cli/internal/config"
	"github.com/rexster-go/rexster-cli/pkg/rexster"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitApplication = 4
	exitTransport   = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	switch {
	case rexster.IsConfigError(err),
		errors.Is(err, config.ErrNotConfigured),
		errors.Is(err, config.ErrProfileNotFound):
		return exitUsage
	case rexster.IsRequestFailed(err):
		return exitApplication
	case rexster.IsTransportError(err), isNetworkError(err):
		return exitTransport
	case isUsageError(err):
		return exitUsage
	default:
		return exitGeneric
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"accepts ",
		"requires at least",
		"requires exactly",
		"invalid argument",
		"must be",
		"is required",
		"conflicts with",
		"invalid output format",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
