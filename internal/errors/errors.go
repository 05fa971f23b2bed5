package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/julianstephens/roadplan/internal/logger"
	"github.com/julianstephens/roadplan/internal/session"
	"github.com/julianstephens/roadplan/internal/validation"
)

// Exit codes returned by the CLI
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitForbidden  = 3
)

// Format formats an error message with a consistent "Error: " prefix.
// Validation failures are expanded into their full report.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if res, ok := validation.AsResult(err); ok {
		return "Error: " + strings.TrimRight(res.FormatReport(), "\n")
	}
	return fmt.Sprintf("Error: %v", err)
}

func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, validation.ErrMissingRequiredFields),
		stderrors.Is(err, validation.ErrInvalidDateRange),
		stderrors.Is(err, validation.ErrIncompleteDailyFields),
		stderrors.Is(err, validation.ErrDateRangeBlocked),
		stderrors.Is(err, validation.ErrNoActivities):
		return ExitValidation
	case stderrors.Is(err, session.ErrForbidden), stderrors.Is(err, session.ErrNotSignedIn):
		return ExitForbidden
	default:
		return ExitFailure
	}
}

// Fatal logs an error and exits with the code ExitCode assigns to it.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		color.New(color.FgRed).Fprintln(os.Stderr, Format(err))
		os.Exit(ExitCode(err))
	}
}

func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	color.New(color.FgRed).Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(ExitFailure)
}
