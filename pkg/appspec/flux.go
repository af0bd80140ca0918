package appspec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FluxHelmRelease mirrors the subset of a Flux HelmRelease manifest that
// drives rendering.
type FluxHelmRelease struct {
	Metadata struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metadata"`
	Spec struct {
		ReleaseName string `yaml:"releaseName"`
		Chart       struct {
			Repository string `yaml:"repository"`
			Name       string `yaml:"name"`
			Version    string `yaml:"version"`
		} `yaml:"chart"`
		Values map[string]any `yaml:"values"`
	} `yaml:"spec"`
}

// LoadFlux parses a Flux HelmRelease manifest into an [App]. The release
// name falls back to metadata.name when spec.releaseName is unset.
func LoadFlux(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read helmrelease manifest: %w", err)
	}

	hr := &FluxHelmRelease{}

	err = yaml.Unmarshal(data, hr)
	if err != nil {
		return nil, fmt.Errorf("parse helmrelease manifest %q: %w", path, err)
	}

	relName := hr.Spec.ReleaseName
	if relName == "" {
		relName = hr.Metadata.Name
	}

	app := &App{
		ReleaseName: relName,
		Namespace:   hr.Metadata.Namespace,
		Repository:  hr.Spec.Chart.Repository,
		Chart:       hr.Spec.Chart.Name,
		Version:     hr.Spec.Chart.Version,
		Values:      hr.Spec.Values,
		Dir:         filepath.Dir(path),
	}

	err = app.Validate()
	if err != nil {
		return nil, fmt.Errorf("helmrelease %q: %w", path, err)
	}

	return app, nil
}
