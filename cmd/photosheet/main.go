package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/internal/cli"
	perrors "github.com/matzehuels/photosheet/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, perrors.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps pipeline error codes to distinct exit statuses so scripts
// can tell bad input from an unusable photo.
func exitCode(err error) int {
	switch perrors.GetCode(err) {
	case perrors.ErrCodeValidation, perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidPath:
		return 2
	case perrors.ErrCodeInvalidImage:
		return 3
	case perrors.ErrCodeSheetTooSmall:
		return 4
	case perrors.ErrCodeUnsupportedFormat:
		return 5
	}
	return 1
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
