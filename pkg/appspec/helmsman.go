package appspec

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// HelmsmanSpec mirrors the subset of the Helmsman desired-state format
// that drives rendering.
type HelmsmanSpec struct {
	HelmRepos map[string]string      `yaml:"helmRepos"`
	Apps      map[string]HelmsmanApp `yaml:"apps"`
}

// HelmsmanApp is a single app entry of a desired-state file.
type HelmsmanApp struct {
	Chart       string         `yaml:"chart"`
	Version     string         `yaml:"version"`
	Namespace   string         `yaml:"namespace"`
	Enabled     bool           `yaml:"enabled"`
	Set         map[string]any `yaml:"set"`
	ValuesFiles []string       `yaml:"valuesFiles"`
}

// LoadHelmsman parses a Helmsman desired-state file into [App]s, resolving
// each app's `repoAlias/chart` reference against the file's helmRepos
// section. Disabled apps are skipped. Apps are returned in name order so
// rendered output is deterministic.
func LoadHelmsman(path string) ([]App, map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read desired state file: %w", err)
	}

	spec := &HelmsmanSpec{}

	err = yaml.Unmarshal(data, spec)
	if err != nil {
		return nil, nil, fmt.Errorf("parse desired state file %q: %w", path, err)
	}

	dir := filepath.Dir(path)

	names := make([]string, 0, len(spec.Apps))
	for name := range spec.Apps {
		names = append(names, name)
	}

	sort.Strings(names)

	apps := make([]App, 0, len(names))

	for _, name := range names {
		ha := spec.Apps[name]

		if !ha.Enabled {
			slog.Info("skipping disabled app",
				slog.String("app", name),
				slog.String("file", path),
			)

			continue
		}

		alias, chart, ok := strings.Cut(ha.Chart, "/")
		if !ok {
			return nil, nil, fmt.Errorf("%w: app %q chart %q is not of the form repo/chart",
				ErrUnknownChartRef, name, ha.Chart)
		}

		repoURL, ok := spec.HelmRepos[alias]
		if !ok {
			return nil, nil, fmt.Errorf("%w: app %q references repo %q not present in helmRepos",
				ErrUnknownChartRef, name, alias)
		}

		app := App{
			ReleaseName: name,
			Namespace:   ha.Namespace,
			Repository:  repoURL,
			Chart:       chart,
			Version:     ha.Version,
			Set:         ha.Set,
			ValuesFiles: ha.ValuesFiles,
			Dir:         dir,
		}

		err := app.Validate()
		if err != nil {
			return nil, nil, fmt.Errorf("app %q: %w", name, err)
		}

		apps = append(apps, app)
	}

	return apps, spec.HelmRepos, nil
}
