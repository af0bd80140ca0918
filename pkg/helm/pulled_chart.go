package helm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"

	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
)

var ErrChartDependency = errors.New("error in chart dependency")

// PulledChart references a Helm chart .tgz archive, or the root directory
// of an unpacked chart. It is created via [Client.Pull].
type PulledChart struct {
	repos  helmrepo.Getter
	client *Client
	chart  string
	path   string
}

// NewPulledChartForPath wraps an existing chart archive or directory in a
// [PulledChart] without consulting the cache.
func NewPulledChartForPath(client *Client, path, chartName string) *PulledChart {
	return &PulledChart{
		client: client,
		path:   path,
		chart:  chartName,
	}
}

// Path returns the location of the chart archive or directory.
func (pc *PulledChart) Path() string {
	return pc.path
}

// Load loads the chart into memory, resolving declared dependencies
// recursively through the pulling [Client]. Archives are unpacked to a
// temporary directory first, so the extraction size cap and path checks
// apply to everything that gets templated.
func (pc *PulledChart) Load(ctx context.Context) (*chart.Chart, error) {
	chartPath, closer, err := pc.Extract()
	if err != nil {
		return nil, fmt.Errorf("extract chart: %w", err)
	}

	defer func() { _ = closer.Close() }()

	loadedChart, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("load chart: %w", err)
	}

	err = pc.loadDependencies(ctx, loadedChart)
	if err != nil {
		return nil, fmt.Errorf("load chart dependencies: %w", err)
	}

	return loadedChart, nil
}

// Extract unpacks a chart archive into a temporary directory and returns
// the path of the chart root inside it, laid out the way
// `helm fetch --untar` does. The returned closer removes the directory.
// If the pulled chart is already a directory, its path and a no-op closer
// are returned.
func (pc *PulledChart) Extract() (string, io.Closer, error) {
	if dirExists(pc.path) {
		return pc.path, NewNopCloser(), nil
	}

	tempDest, err := createTempDir(os.TempDir())
	if err != nil {
		return "", nil, fmt.Errorf("create temporary directory: %w", err)
	}

	reader, err := os.Open(pc.path)
	if err != nil {
		_ = os.RemoveAll(tempDest)

		return "", nil, fmt.Errorf("open chart path %q: %w", pc.path, err)
	}

	defer func() { _ = reader.Close() }()

	// A zero quantity disables the size cap.
	err = gunzip(tempDest, reader, pc.client.MaxExtractSize.Value(), false)
	if err != nil {
		_ = os.RemoveAll(tempDest)

		return "", nil, fmt.Errorf("extract chart %q: %w", pc.chart, err)
	}

	return filepath.Join(tempDest, normalizeChartName(pc.chart)), newInlineCloser(func() error {
		return os.RemoveAll(tempDest)
	}), nil
}

// normalizeChartName reduces a chart reference to the directory name its
// archive unpacks into. OCI references can carry a path prefix
// (`org/chart`); the archive still unpacks under the bare chart name.
func normalizeChartName(chartName string) string {
	_, name := path.Split(chartName)
	if name == "" || name == "." || name == ".." {
		return chartName
	}

	return name
}

func (pc *PulledChart) loadDependencies(ctx context.Context, loadedChart *chart.Chart) error {
	loadedDeps := []*chart.Chart{}

	for _, chartDep := range loadedChart.Metadata.Dependencies {
		isLoaded := false

		for _, includedDep := range loadedChart.Dependencies() {
			if includedDep.Name() == chartDep.Name {
				loadedDeps = append(loadedDeps, includedDep)
				isLoaded = true

				break
			}
		}

		if isLoaded {
			continue
		}

		if chartDep.Repository == "" {
			return fmt.Errorf("%w: dependency %q has no repository", ErrChartDependency, chartDep.Name)
		}

		depChart, err := pc.client.Pull(ctx, chartDep.Name, chartDep.Repository, chartDep.Version, pc.repos)
		if err != nil {
			return fmt.Errorf("%w: pull %q: %w", ErrChartDependency, chartDep.Name, err)
		}

		dep, err := depChart.Load(ctx)
		if err != nil {
			return fmt.Errorf("%w: load %q: %w", ErrChartDependency, chartDep.Name, err)
		}

		loadedDeps = append(loadedDeps, dep)
	}

	loadedChart.SetDependencies(loadedDeps...)

	return nil
}
