package helm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvl/helm2yaml/pkg/helm"
	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
	"github.com/michaelvl/helm2yaml/pkg/paths"
)

func newTestClient(t *testing.T, maxExtractSize string) *helm.Client {
	t.Helper()

	c, err := helm.NewClient(
		paths.NewStaticTempPaths(filepath.Join(t.TempDir(), "charts"), paths.NewBase64PathEncoder()),
		maxExtractSize,
	)
	require.NoError(t, err)

	return c
}

func TestTemplateLocalChart(t *testing.T) {
	t.Parallel()

	c := helm.NewChart(newTestClient(t, "10M"), helmrepo.NewManager(), helm.TemplateOpts{
		ChartName:   "simple-chart",
		RepoURL:     "./testdata",
		ReleaseName: "demo",
		Namespace:   "demo-ns",
		ValuesObject: map[string]any{
			"message": "from-test",
		},
	})

	objs, err := c.Template(t.Context())
	require.NoError(t, err)
	require.Len(t, objs, 1)

	obj := objs[0]
	assert.Equal(t, "ConfigMap", obj.GetKind())
	assert.Equal(t, "demo-config", obj.GetName())
	assert.Equal(t, "demo-ns", obj.GetNamespace())

	data, ok, err := unstructuredMapValue(obj.Object, "data")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from-test", data["message"])
	assert.Equal(t, "1", data["replicas"], "values not overridden keep chart defaults")
}

func unstructuredMapValue(obj map[string]any, key string) (map[string]any, bool, error) {
	v, ok := obj[key]
	if !ok {
		return nil, false, nil
	}

	m, ok := v.(map[string]any)

	return m, ok, nil
}

func TestTemplateUnknownChart(t *testing.T) {
	t.Parallel()

	c := helm.NewChart(newTestClient(t, "10M"), helmrepo.NewManager(), helm.TemplateOpts{
		ChartName:   "absent-chart",
		RepoURL:     "./testdata",
		ReleaseName: "demo",
		Namespace:   "demo-ns",
	})

	_, err := c.Template(t.Context())
	require.Error(t, err)
}

func TestTemplateKubeVersion(t *testing.T) {
	t.Parallel()

	c := helm.NewChart(newTestClient(t, "10M"), helmrepo.NewManager(), helm.TemplateOpts{
		ChartName:   "simple-chart",
		RepoURL:     "./testdata",
		ReleaseName: "demo",
		Namespace:   "demo-ns",
		KubeVersion: "not-a-version",
	})

	_, err := c.Template(t.Context())
	require.Error(t, err)
}

func TestPullLocalChart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "10M")

	pc, err := client.Pull(t.Context(), "simple-chart", "./testdata", "", helmrepo.NewManager())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "simple-chart"), pc.Path())

	loaded, err := pc.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "simple-chart", loaded.Name())
	assert.Equal(t, "0.1.0", loaded.Metadata.Version)
}

func TestExtractArchive(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "10M")

	pc := archivedChart(t, client)

	dir, closer, err := pc.Extract()
	require.NoError(t, err)

	t.Cleanup(func() { _ = closer.Close() })

	assert.Equal(t, "simple-chart", filepath.Base(dir))

	_, err = os.Stat(filepath.Join(dir, "Chart.yaml"))
	require.NoError(t, err)

	require.NoError(t, closer.Close())

	_, err = os.Stat(dir)
	require.Error(t, err, "closer removes the extracted directory")
}

func TestLoadArchive(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "10M")

	pc := archivedChart(t, client)

	loaded, err := pc.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "simple-chart", loaded.Name())
	assert.Equal(t, "0.1.0", loaded.Metadata.Version)
}

func TestLoadArchiveSizeCap(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "1")

	pc := archivedChart(t, client)

	_, err := pc.Load(t.Context())
	require.Error(t, err)
}

func TestExtractArchiveSizeCap(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "1")

	pc := archivedChart(t, client)

	_, _, err := pc.Extract()
	require.Error(t, err)
}

// archivedChart loads the packaged chart fixture into the client's cache
// and returns a PulledChart referencing the archive.
func archivedChart(t *testing.T, client *helm.Client) *helm.PulledChart {
	t.Helper()

	src, err := os.ReadFile(filepath.Join("testdata", "simple-chart-0.1.0.tgz"))
	require.NoError(t, err)

	repoDir := t.TempDir()

	// A directory containing a .tgz is not a chart directory; place the
	// archive where a local pull of an unpacked chart would not find it,
	// then reference it directly.
	archivePath := filepath.Join(repoDir, "simple-chart-0.1.0.tgz")
	require.NoError(t, os.WriteFile(archivePath, src, 0o600))

	return helm.NewPulledChartForPath(client, archivePath, "simple-chart")
}
