package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelvl/helm2yaml/internal/version"
)

func GetVersionString() string {
	revision := version.Revision
	if len(revision) > 8 {
		revision = revision[:8]
	}

	return fmt.Sprintf("%s (%s)", version.Version, revision)
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the helm2yaml CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(GetVersionString())
		},
	}
}
