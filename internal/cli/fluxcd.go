package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelvl/helm2yaml/pkg/appspec"
	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
)

const fluxExample = `  helm2yaml fluxcd -f helmrelease.yaml --render-to manifests.yaml
`

// NewFluxCmd returns the fluxcd command, which renders Flux HelmRelease
// resources. Each file holds a single HelmRelease with an inline chart
// repository URL, so no repository registration is needed.
func NewFluxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fluxcd",
		Short:   "Render apps from Flux HelmRelease resources",
		Example: fluxExample,
		RunE: func(cc *cobra.Command, _ []string) error {
			flags := cc.Flags()

			args, err := readRenderArgs(flags)
			if err != nil {
				return err
			}

			files, err := flags.GetStringArray("file")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
			}

			if len(files) == 0 {
				return fmt.Errorf("%w: at least one -f file is required", ErrInvalidArgument)
			}

			apps := make([]appspec.App, 0, len(files))

			for _, file := range files {
				app, err := appspec.LoadFlux(file)
				if err != nil {
					return err
				}

				apps = append(apps, *app)
			}

			return renderAndWrite(cc.Context(), apps, helmrepo.DefaultManager, args, cc.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayP("file", "f", nil, "Flux HelmRelease file (can specify multiple)")

	return cmd
}
