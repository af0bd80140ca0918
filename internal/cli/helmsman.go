package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelvl/helm2yaml/pkg/appspec"
	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
)

const helmsmanExample = `  helm2yaml helmsman -f helmsman.yaml --render-to manifests.yaml
  helm2yaml helmsman -f base.yaml -f overlay.yaml --render-to - --render-namespace-to namespaces.yaml
`

// NewHelmsmanCmd returns the helmsman command, which renders the apps of
// one or more Helmsman desired-state files.
func NewHelmsmanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "helmsman",
		Short:   "Render apps from Helmsman desired-state files",
		Example: helmsmanExample,
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

			repos := helmrepo.NewManager()

			var apps []appspec.App

			for _, file := range files {
				fileApps, helmRepos, err := appspec.LoadHelmsman(file)
				if err != nil {
					return err
				}

				err = repos.AddMap(helmRepos)
				if err != nil {
					return fmt.Errorf("load %q: %w", file, err)
				}

				apps = append(apps, fileApps...)
			}

			return renderAndWrite(cc.Context(), apps, repos, args, cc.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayP("file", "f", nil, "Helmsman desired-state file (can specify multiple)")

	// Accepted for compatibility with Helmsman invocations. Rendering
	// never applies anything, so these have no effect.
	cmd.Flags().Bool("apply", false, "Accepted for Helmsman compatibility (no effect)")
	cmd.Flags().Bool("no-banner", false, "Accepted for Helmsman compatibility (no effect)")
	cmd.Flags().Bool("keep-untracked-releases", false, "Accepted for Helmsman compatibility (no effect)")

	return cmd
}
