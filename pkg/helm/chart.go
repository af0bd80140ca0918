package helm

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
	"github.com/michaelvl/helm2yaml/pkg/kube"
)

// Chart binds a [TemplateOpts] to the client and repositories needed to
// render it.
type Chart struct {
	Client       *Client
	Repos        helmrepo.Getter
	TemplateOpts TemplateOpts
}

// NewChart creates a new [Chart].
func NewChart(client *Client, repos helmrepo.Getter, opts TemplateOpts) *Chart {
	return &Chart{
		Client:       client,
		Repos:        repos,
		TemplateOpts: opts,
	}
}

// Template pulls the chart and renders it, returning the result split into
// individual Kubernetes objects.
func (c *Chart) Template(ctx context.Context) ([]*unstructured.Unstructured, error) {
	out, err := c.template(ctx)
	if err != nil {
		return nil, err
	}

	objs, err := kube.SplitYAML(out)
	if err != nil {
		return nil, fmt.Errorf("parse helm template output: %w", err)
	}

	return objs, nil
}

func (c *Chart) template(ctx context.Context) ([]byte, error) {
	pc, err := c.Client.Pull(ctx, c.TemplateOpts.ChartName, c.TemplateOpts.RepoURL, c.TemplateOpts.TargetRevision, c.Repos)
	if err != nil {
		return nil, fmt.Errorf("pull helm chart: %w", err)
	}

	out, err := c.Client.Template(ctx, pc, &c.TemplateOpts)
	if err != nil {
		return nil, fmt.Errorf("template helm chart: %w", err)
	}

	return []byte(out), nil
}
