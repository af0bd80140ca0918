package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"

	"github.com/michaelvl/helm2yaml/pkg/appspec"
	"github.com/michaelvl/helm2yaml/pkg/helm"
	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
	"github.com/michaelvl/helm2yaml/pkg/render"
)

// renderArgs holds the output and capability flags shared by the
// helmsman and fluxcd commands.
type renderArgs struct {
	renderTo    string
	namespaceTo string
	kubeVersion string
	apiVersions []string
	skipCRDs    bool
	skipHooks   bool
}

func readRenderArgs(flags *pflag.FlagSet) (*renderArgs, error) {
	args := &renderArgs{}

	var merr error

	var err error

	args.renderTo, err = flags.GetString("render-to")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	args.namespaceTo, err = flags.GetString("render-namespace-to")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	args.kubeVersion, err = flags.GetString("kube-version")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	args.apiVersions, err = flags.GetStringArray("api-versions")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	args.skipCRDs, err = flags.GetBool("skip-crds")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	args.skipHooks, err = flags.GetBool("skip-hooks")
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, merr)
	}

	return args, nil
}

// renderAndWrite renders the apps and writes the manifest stream and,
// when requested, the implicit Namespace resources. Outputs named `-`
// (or left empty) go to stdout.
func renderAndWrite(
	ctx context.Context,
	apps []appspec.App,
	repos helmrepo.Getter,
	args *renderArgs,
	stdout io.Writer,
) error {
	renderer := render.New(helm.DefaultClient, repos)

	result, err := renderer.Render(ctx, apps, render.Opts{
		KubeVersion: args.kubeVersion,
		APIVersions: args.apiVersions,
		SkipCRDs:    args.skipCRDs,
		SkipHooks:   args.skipHooks,
	})
	if err != nil {
		return err
	}

	out, err := render.OpenOutput(args.renderTo, stdout)
	if err != nil {
		return err
	}

	_, err = out.Write(result.Manifests)
	if err != nil {
		err = fmt.Errorf("write manifests: %w", err)

		_ = out.Close()

		return err
	}

	err = out.Close()
	if err != nil {
		return fmt.Errorf("close manifest output: %w", err)
	}

	if args.namespaceTo == "" {
		return nil
	}

	nsOut, err := render.OpenOutput(args.namespaceTo, stdout)
	if err != nil {
		return err
	}

	_, err = nsOut.Write(result.Namespaces)
	if err != nil {
		err = fmt.Errorf("write namespaces: %w", err)

		_ = nsOut.Close()

		return err
	}

	err = nsOut.Close()
	if err != nil {
		return fmt.Errorf("close namespace output: %w", err)
	}

	return nil
}
