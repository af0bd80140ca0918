package helm

import (
	"context"
	"fmt"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chartutil"
	helmkube "helm.sh/helm/v3/pkg/kube"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

// TemplateOpts selects a chart and configures how it is rendered.
type TemplateOpts struct {
	// ChartName is the chart to render.
	ChartName string
	// TargetRevision is the chart version or constraint; empty means
	// latest.
	TargetRevision string
	// RepoURL locates the chart repository, as an alias (`@name`) or URL.
	RepoURL string
	// ReleaseName and Namespace give the rendered release its identity.
	ReleaseName string
	Namespace   string
	// ValuesObject holds the fully assembled values.
	ValuesObject map[string]any
	// KubeVersion constrains capability checks in chart templates. Empty
	// fails open with a far-future version.
	KubeVersion string
	// APIVersions extends the capability API version set.
	APIVersions []string
	SkipCRDs    bool
	SkipHooks   bool
}

// Template renders a loaded chart with a client-only dry-run install
// action and returns the manifest. Hook manifests are appended unless
// opts.SkipHooks is set.
func (c *Client) Template(ctx context.Context, pc *PulledChart, opts *TemplateOpts) (string, error) {
	// Fail open instead of blocking the template.
	kv := &chartutil.KubeVersion{
		Major:   "999",
		Minor:   "999",
		Version: "v999.999.999",
	}

	var err error

	if opts.KubeVersion != "" {
		kv, err = chartutil.ParseKubeVersion(opts.KubeVersion)
		if err != nil {
			return "", fmt.Errorf("parse kube version: %w", err)
		}
	}

	av := chartutil.DefaultVersionSet
	if len(opts.APIVersions) > 0 {
		av = append(chartutil.VersionSet{}, chartutil.DefaultVersionSet...)
		av = append(av, opts.APIVersions...)
	}

	loadedChart, err := pc.Load(ctx)
	if err != nil {
		return "", err
	}

	ta := action.NewInstall(&action.Configuration{
		KubeClient:     helmkube.New(genericclioptions.NewConfigFlags(false)),
		RegistryClient: c.rc,
		Capabilities: &chartutil.Capabilities{
			KubeVersion: *kv,
			APIVersions: av,
			HelmVersion: chartutil.DefaultCapabilities.HelmVersion,
		},
	})
	ta.DryRun = true
	ta.DryRunOption = "client"
	ta.ClientOnly = true
	ta.DisableHooks = true
	ta.ReleaseName = opts.ReleaseName
	ta.Namespace = opts.Namespace
	ta.KubeVersion = kv
	ta.APIVersions = av

	// Set both, otherwise the defaults make things weird.
	ta.IncludeCRDs = !opts.SkipCRDs
	ta.SkipCRDs = opts.SkipCRDs

	values := opts.ValuesObject
	if values == nil {
		values = make(map[string]any)
	}

	release, err := ta.Run(loadedChart, values)
	if err != nil {
		return "", fmt.Errorf("run install action: %w", err)
	}

	manifest := release.Manifest

	if !opts.SkipHooks {
		for _, hook := range release.Hooks {
			if hook == nil {
				continue
			}

			manifest += "\n---\n" + hook.Manifest
		}
	}

	return manifest, nil
}
