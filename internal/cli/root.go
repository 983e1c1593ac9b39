// Package cli implements glitchctl, the operator tool for a GLITCH deployment.
package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/glitch-app/glitch/internal/bootstrap"
	"github.com/glitch-app/glitch/internal/telemetry"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

// confirm asks a yes/no question; tests replace it.
var confirm = func(msg string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &ok)
	return ok, err
}

// container is swapped in tests.
var container = bootstrap.BuildContainer

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "glitchctl",
		Short:         "GLITCH operator CLI",
		Long:          "glitchctl runs migrations and sweeps, manages users and tails quest events against the configured deployment.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newVersionCmd(),
		newMigrateCmd(),
		newSweepCmd(),
		newUserCmd(),
		newEventsCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glitchctl version %s\n", telemetry.Version)
		},
	}
}

func invoke[T any](inj *do.Injector) (T, error) {
	v, err := do.Invoke[T](inj)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("init: %w", err)
	}
	return v, nil
}
