// Package render drives chart rendering for a set of application specs.
//
// Charts are pulled concurrently, then templated one at a time so the
// rendered stream follows input order regardless of download timing.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"

	"github.com/michaelvl/helm2yaml/pkg/appspec"
	"github.com/michaelvl/helm2yaml/pkg/envsubst"
	"github.com/michaelvl/helm2yaml/pkg/helm"
	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
	"github.com/michaelvl/helm2yaml/pkg/kube"
)

var ErrRenderFailed = errors.New("render failed")

// Opts carries per-invocation rendering configuration shared by all apps.
type Opts struct {
	// KubeVersion and APIVersions feed chart capability checks.
	KubeVersion string
	APIVersions []string
	SkipCRDs    bool
	SkipHooks   bool
	// Env resolves environment variable placeholders in values. Defaults
	// to the process environment.
	Env envsubst.Mapping
	// Workers bounds concurrent chart pulls. Defaults to GOMAXPROCS.
	Workers int64
}

// Result holds the output of rendering a list of apps.
type Result struct {
	// Manifests is the rendered stream, one YAML document per object, in
	// app order. Empty documents emitted by chart templates are dropped.
	Manifests []byte
	// Namespaces are the implicit Namespace resources, one per distinct
	// app namespace, in first-use order.
	Namespaces []byte
}

// Renderer renders [appspec.App]s into Kubernetes manifests.
type Renderer struct {
	Client *helm.Client
	Repos  helmrepo.Getter
}

// New creates a [Renderer] using the given chart client and repositories.
func New(client *helm.Client, repos helmrepo.Getter) *Renderer {
	return &Renderer{
		Client: client,
		Repos:  repos,
	}
}

// Render pulls and templates every app, returning the combined manifests
// and the implicit Namespace resources.
func (r *Renderer) Render(ctx context.Context, apps []appspec.App, opts Opts) (*Result, error) {
	env := opts.Env
	if env == nil {
		env = envsubst.OSMapping()
	}

	err := r.pullAll(ctx, apps, opts.Workers)
	if err != nil {
		return nil, err
	}

	manifests := &bytes.Buffer{}
	namespaces := &bytes.Buffer{}
	seenNamespaces := map[string]bool{}

	for _, app := range apps {
		logger := slog.With(
			slog.String("release", app.ReleaseName),
			slog.String("namespace", app.Namespace),
		)

		values, err := app.BuildValues(env)
		if err != nil {
			return nil, fmt.Errorf("%w: app %q: %w", ErrRenderFailed, app.ReleaseName, err)
		}

		chart := helm.NewChart(r.Client, r.Repos, helm.TemplateOpts{
			ChartName:      app.Chart,
			TargetRevision: app.Version,
			RepoURL:        app.Repository,
			ReleaseName:    app.ReleaseName,
			Namespace:      app.Namespace,
			ValuesObject:   values,
			KubeVersion:    opts.KubeVersion,
			APIVersions:    opts.APIVersions,
			SkipCRDs:       opts.SkipCRDs,
			SkipHooks:      opts.SkipHooks,
		})

		objs, err := chart.Template(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: app %q: %w", ErrRenderFailed, app.ReleaseName, err)
		}

		logger.InfoContext(ctx, "rendered chart",
			slog.String("chart", app.Chart),
			slog.String("version", app.Version),
			slog.Int("objects", len(objs)),
		)

		for _, obj := range objs {
			doc, err := kube.MarshalObject(obj)
			if err != nil {
				return nil, fmt.Errorf("%w: app %q: %w", ErrRenderFailed, app.ReleaseName, err)
			}

			writeDocument(manifests, doc)
		}

		if !seenNamespaces[app.Namespace] {
			seenNamespaces[app.Namespace] = true

			nsOut, err := kube.MarshalNamespace(kube.NewNamespace(app.Namespace))
			if err != nil {
				return nil, fmt.Errorf("%w: app %q: %w", ErrRenderFailed, app.ReleaseName, err)
			}

			writeDocument(namespaces, nsOut)
		}
	}

	return &Result{
		Manifests:  manifests.Bytes(),
		Namespaces: namespaces.Bytes(),
	}, nil
}

// pullAll fetches every app's chart under a bounded worker pool, warming
// the chart cache before the sequential templating pass.
func (r *Renderer) pullAll(ctx context.Context, apps []appspec.App, workers int64) error {
	if workers <= 0 {
		workers = int64(runtime.GOMAXPROCS(0))
	}

	sem := semaphore.NewWeighted(workers)
	errChan := make(chan error, len(apps))

	for _, app := range apps {
		err := sem.Acquire(ctx, 1)
		if err != nil {
			return fmt.Errorf("acquire worker: %w", err)
		}

		go func() {
			defer sem.Release(1)

			_, err := r.Client.Pull(ctx, app.Chart, app.Repository, app.Version, r.Repos)
			if err != nil {
				errChan <- fmt.Errorf("pull %q: %w", app.Chart, err)
			}
		}()
	}

	err := sem.Acquire(ctx, workers)
	if err != nil {
		return fmt.Errorf("drain workers: %w", err)
	}

	close(errChan)

	var merr error
	for err := range errChan {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, merr)
	}

	return nil
}

func writeDocument(buf *bytes.Buffer, doc []byte) {
	if len(doc) == 0 {
		return
	}

	if buf.Len() > 0 {
		buf.WriteString("\n---\n")
	}

	buf.Write(doc)
}
