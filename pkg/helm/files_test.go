package helm_test

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/michaelvl/helm2yaml/pkg/helm"
)

type archiveEntry struct {
	name     string
	typeflag byte
	linkname string
	body     string
}

// writeArchive creates a .tgz from the given entries and returns its path.
func writeArchive(t *testing.T, entries []archiveEntry) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "crafted-0.1.0.tgz")

	f, err := os.Create(archivePath)
	require.NoError(t, err)

	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)

	for _, entry := range entries {
		hdr := &tar.Header{
			Name:     entry.name,
			Typeflag: entry.typeflag,
			Linkname: entry.linkname,
			Mode:     0o644,
			Size:     int64(len(entry.body)),
		}
		require.NoError(t, tw.WriteHeader(hdr))

		if entry.typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(entry.body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	require.NoError(t, f.Close())

	return archivePath
}

func TestExtractArchivePathTraversal(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "10M")

	archivePath := writeArchive(t, []archiveEntry{
		{name: "crafted/Chart.yaml", typeflag: tar.TypeReg, body: "name: crafted\nversion: 0.1.0\n"},
		{name: "../escape.yaml", typeflag: tar.TypeReg, body: "boom: true\n"},
	})

	pc := helm.NewPulledChartForPath(client, archivePath, "crafted")

	_, _, err := pc.Extract()
	require.ErrorContains(t, err, "illegal filepath in archive")
}

func TestExtractArchiveSymlinkEscape(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "10M")

	archivePath := writeArchive(t, []archiveEntry{
		{name: "crafted/", typeflag: tar.TypeDir},
		{name: "crafted/values.yaml", typeflag: tar.TypeSymlink, linkname: "../../../../etc/passwd"},
	})

	pc := helm.NewPulledChartForPath(client, archivePath, "crafted")

	_, _, err := pc.Extract()
	require.ErrorContains(t, err, "illegal filepath in symlink")
}
