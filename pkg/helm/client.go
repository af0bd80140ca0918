package helm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/registry"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
	"github.com/michaelvl/helm2yaml/pkg/paths"
	"github.com/michaelvl/helm2yaml/pkg/syncs"
)

var (
	globalLock = syncs.NewKeyLock()

	// DefaultClient is a [Client] caching charts under the system temp
	// directory.
	DefaultClient = MustNewClient(
		paths.NewStaticTempPaths(filepath.Join(os.TempDir(), "helm2yaml", "charts"), paths.NewBase64PathEncoder()),
		"10M",
	)
)

// PathCacher stores and retrieves filesystem paths by key.
// See [paths.StaticTempPaths] for an implementation.
type PathCacher interface {
	Add(key, value string)
	GetPath(key string) (string, error)
	GetPathIfExists(key string) string
	GetPaths() map[string]string
}

// ChartPuller pulls Helm charts and returns the result.
// See [Client] for an implementation.
type ChartPuller interface {
	Pull(ctx context.Context, chartName, repoURL, targetRevision string, repos helmrepo.Getter) (*PulledChart, error)
}

// Client pulls and caches Helm charts from local and remote repositories.
// Create instances with [NewClient] or [MustNewClient].
type Client struct {
	Paths          PathCacher
	RepoLock       syncs.KeyLocker
	MaxExtractSize resource.Quantity
	rc             *registry.Client
	helmHome       string
}

// NewClient creates a new [Client]. maxExtractSize caps the on-disk size of
// an extracted chart; "0" disables the limit.
func NewClient(pc PathCacher, maxExtractSize string) (*Client, error) {
	maxSize, err := resource.ParseQuantity(maxExtractSize)
	if err != nil {
		return nil, fmt.Errorf("parse max extract size: %w", err)
	}

	rc, err := registry.NewClient(registry.ClientOptEnableCache(true))
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "helm2yaml")
	if err != nil {
		return nil, fmt.Errorf("create temporary directory for helm: %w", err)
	}

	return &Client{
		Paths:          pc,
		RepoLock:       globalLock,
		MaxExtractSize: maxSize,
		rc:             rc,
		helmHome:       tmpDir,
	}, nil
}

// MustNewClient runs [NewClient] and panics on any errors.
func MustNewClient(pc PathCacher, maxExtractSize string) *Client {
	c, err := NewClient(pc, maxExtractSize)
	if err != nil {
		panic(err)
	}

	return c
}

// Pull fetches the requested chart, returning a [PulledChart] referencing
// either the cached .tgz archive or, for local repositories, the chart
// directory itself. Subsequent pulls of the same chart and version are
// served from the cache.
func (c *Client) Pull(ctx context.Context, chartName, repoURL, version string, repos helmrepo.Getter) (*PulledChart, error) {
	hr, err := repos.Get(repoURL)
	if err != nil {
		return nil, fmt.Errorf("get repo %q: %w", repoURL, err)
	}

	pc := &PulledChart{
		chart:  chartName,
		repos:  repos,
		client: c,
	}

	if hr.IsLocal() {
		chartPath, err := c.getLocalChart(chartName, hr)
		if err != nil {
			return nil, fmt.Errorf("get local chart: %w", err)
		}

		pc.path = chartPath

		return pc, nil
	}

	chartPath, err := c.getCachedOrRemoteChart(ctx, chartName, version, hr)
	if err != nil {
		return nil, fmt.Errorf("get cached or remote chart: %w", err)
	}

	pc.path = chartPath

	return pc, nil
}

// CleanChartCache removes the cached chart archive for the given chart.
func (c *Client) CleanChartCache(chartName, repoURL, version string) error {
	cachePath, err := c.getCachedChartPath(chartName, repoURL, version)
	if err != nil {
		return fmt.Errorf("get cached chart path: %w", err)
	}

	err = os.RemoveAll(cachePath)
	if err != nil {
		return fmt.Errorf("remove chart cache at %q: %w", cachePath, err)
	}

	return nil
}

func (c *Client) getCachedChartPath(chartName, repoURL, version string) (string, error) {
	keyData, err := json.Marshal(
		map[string]string{"url": repoURL, "chart": chartName, "version": version},
	)
	if err != nil {
		return "", fmt.Errorf("marshal key data: %w", err)
	}

	chartPath, err := c.Paths.GetPath(string(keyData))
	if err != nil {
		return "", fmt.Errorf("get path: %w", err)
	}

	return chartPath, nil
}

func (c *Client) getLocalChart(chartName string, repo *helmrepo.Repo) (string, error) {
	chartPath := filepath.Join(repo.URL, chartName)
	if !dirExists(chartPath) {
		return "", fmt.Errorf("chart directory does not exist: %q", chartPath)
	}

	return chartPath, nil
}

func (c *Client) getCachedOrRemoteChart(
	ctx context.Context,
	chartName, version string,
	repo *helmrepo.Repo,
) (string, error) {
	cachedChartPath, err := c.getCachedChartPath(chartName, repo.URL, version)
	if err != nil {
		return "", fmt.Errorf("get cached chart path: %w", err)
	}

	c.RepoLock.Lock(cachedChartPath)
	defer c.RepoLock.Unlock(cachedChartPath)

	// Check if the chart archive is already downloaded.
	exists, err := fileExists(cachedChartPath)
	if err != nil {
		return "", fmt.Errorf("check cached chart path: %w", err)
	}

	if !exists {
		err := c.pullRemoteChart(ctx, chartName, version, cachedChartPath, repo)
		if err != nil {
			return "", fmt.Errorf("pull remote chart: %w", err)
		}
	}

	return cachedChartPath, nil
}

func (c *Client) pullRemoteChart(ctx context.Context, chartName, version, dstPath string, repo *helmrepo.Repo) error {
	// Empty temp directory the pull action can download into.
	tempDest, err := os.MkdirTemp("", "helm2yaml-*")
	if err != nil {
		return fmt.Errorf("create temporary destination directory: %w", err)
	}

	defer func() { _ = os.RemoveAll(tempDest) }()

	logger := slog.With(
		slog.String("chart", chartName),
	)

	ap := action.NewPullWithOpts(action.WithConfig(&action.Configuration{
		RegistryClient: c.rc,
		Log: func(msg string, kv ...any) {
			slog.Debug(msg, kv...)
		},
	}))
	ap.Settings = &cli.EnvSettings{
		RepositoryCache: filepath.Join(c.helmHome, "cache"),
	}
	ap.Untar = false
	ap.DestDir = tempDest

	if version != "" {
		ap.Version = version
	}

	chartRef := chartName

	if repo.IsOCI() {
		// OCI charts are pulled by full reference rather than repo + name.
		chartRef = repo.URL + "/" + chartName
	} else {
		ap.RepoURL = repo.URL
	}

	ap.Username = repo.Username
	ap.Password = repo.Password
	ap.CaFile = repo.CAFile
	ap.CertFile = repo.CertFile
	ap.KeyFile = repo.KeyFile
	ap.PassCredentialsAll = repo.PassCredentials
	ap.InsecureSkipTLSverify = repo.InsecureSkipVerify

	logger.InfoContext(ctx, "pulling chart",
		slog.String("chart_ref", chartRef),
		slog.String("version", ap.Version),
		slog.String("repo_url", ap.RepoURL),
	)

	done := make(chan error, 1)
	go func() {
		_, err := ap.Run(chartRef)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("execute helm pull: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("execute helm pull: %w", err)
		}
	}

	logger.DebugContext(ctx, "chart pull complete")

	// The pull action downloads the chart into a .tgz file; move it to the
	// cache path if the pull succeeded.
	infos, err := os.ReadDir(tempDest)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", tempDest, err)
	}

	if len(infos) != 1 {
		return fmt.Errorf("expected 1 file, found %v", len(infos))
	}

	chartFilePath := filepath.Join(tempDest, infos[0].Name())

	err = os.Rename(chartFilePath, dstPath)
	if err != nil {
		return fmt.Errorf("rename file from %q to %q: %w", chartFilePath, dstPath, err)
	}

	return nil
}
