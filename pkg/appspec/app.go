package appspec

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidVersion  = errors.New("invalid chart version")
	ErrUnknownChartRef = errors.New("unknown chart repository reference")
)

// App is a single Helm release to render: a chart reference plus the
// release identity and values that `helm template` needs.
type App struct {
	// ReleaseName is the Helm release name.
	ReleaseName string
	// Namespace is the target namespace, also emitted as an implicit
	// Namespace resource.
	Namespace string
	// Repository is the chart repository URL (http(s), oci, or a local
	// directory path).
	Repository string
	// Chart is the chart name within the repository.
	Chart string
	// Version is the chart version or a semver constraint. Empty selects
	// the latest version.
	Version string
	// Values holds inline values, merged over the values files.
	Values map[string]any
	// Set holds flat `--set` style overrides keyed by dotted paths,
	// applied last.
	Set map[string]any
	// ValuesFiles are values file paths, resolved relative to Dir.
	ValuesFiles []string
	// Dir is the directory of the file the app was loaded from.
	Dir string
}

// Validate checks that the app carries everything templating requires.
func (a *App) Validate() error {
	for field, v := range map[string]string{
		"release name": a.ReleaseName,
		"namespace":    a.Namespace,
		"repository":   a.Repository,
		"chart":        a.Chart,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	if a.Version != "" {
		// Accept exact versions and constraint expressions.
		_, verr := semver.NewVersion(a.Version)
		_, cerr := semver.NewConstraint(a.Version)
		if verr != nil && cerr != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidVersion, a.Version, verr)
		}
	}

	return nil
}
