// Package cli implements the helm2yaml command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/michaelvl/helm2yaml/pkg/log"
)

var ErrInvalidArgument = errors.New("invalid argument")

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionString(),
	}

	cmd.PersistentFlags().String("log_level", "info", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "", "Set the log format (text, logfmt, json)")

	cmd.PersistentFlags().String("render-to", "", "Write rendered manifests to this file ('-' for stdout)")
	cmd.PersistentFlags().String("render-namespace-to", "",
		"Write Namespace resources for app namespaces to this file ('-' for stdout)")
	cmd.PersistentFlags().String("kube-version", "", "Kubernetes version used for Capabilities.KubeVersion")
	cmd.PersistentFlags().StringArray("api-versions", nil,
		"Kubernetes API versions used for Capabilities.APIVersions (can specify multiple)")
	cmd.PersistentFlags().Bool("skip-crds", false, "Skip rendering CRDs from chart crd/ directories")
	cmd.PersistentFlags().Bool("skip-hooks", false, "Skip rendering chart hooks")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
		}

		// Pretty log output is only useful on a terminal. Pipes and
		// container logs get logfmt unless a format was forced.
		if logFormat == "" {
			logFormat = log.TextFormat
			if !isatty.IsTerminal(os.Stderr.Fd()) {
				logFormat = log.LogfmtFormat
			}
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}

		slog.SetDefault(slog.New(h))

		return nil
	}

	cmd.RunE = func(cc *cobra.Command, _ []string) error {
		return cc.Help()
	}

	cmd.AddCommand(NewHelmsmanCmd())
	cmd.AddCommand(NewFluxCmd())
	cmd.AddCommand(NewEnvsubstCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
