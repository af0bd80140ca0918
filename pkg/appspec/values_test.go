package appspec_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvl/helm2yaml/pkg/appspec"
)

func testMapping(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]

		return v, ok
	}
}

func TestBuildValues(t *testing.T) {
	t.Parallel()

	app := appspec.App{
		ReleaseName: "prometheus",
		Namespace:   "monitoring",
		Repository:  "https://charts.example.com/stable",
		Chart:       "prometheus",
		Set: map[string]any{
			"server.replicaCount": 2,
			"server.image.tag":    "${PROM_TAG}",
		},
		ValuesFiles: []string{filepath.Join("values", "prometheus.yaml")},
		Dir:         "testdata",
	}

	vals, err := app.BuildValues(testMapping(map[string]string{
		"PROM_TAG": "v2.50.0",
		"DOMAIN":   "example.com",
	}))
	require.NoError(t, err)

	server, ok := vals["server"].(map[string]any)
	require.True(t, ok, "server subtree: %#v", vals)

	assert.Equal(t, "15d", server["retention"])
	assert.Equal(t, "https://prometheus.example.com", server["externalUrl"])
	assert.Equal(t, int64(2), server["replicaCount"])

	image, ok := server["image"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v2.50.0", image["tag"])

	am, ok := vals["alertmanager"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, am["enabled"])
}

func TestBuildValuesUndefinedVarPreserved(t *testing.T) {
	t.Parallel()

	app := appspec.App{
		Set: map[string]any{
			"image.tag": "${NOT_DEFINED}",
		},
	}

	vals, err := app.BuildValues(testMapping(nil))
	require.NoError(t, err)

	image, ok := vals["image"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "${NOT_DEFINED}", image["tag"])
}

func TestBuildValuesInlinePrecedence(t *testing.T) {
	t.Parallel()

	app := appspec.App{
		Values: map[string]any{
			"alertmanager": map[string]any{"enabled": false},
			"greeting":     "hello ${WHO}",
		},
		ValuesFiles: []string{filepath.Join("values", "prometheus.yaml")},
		Dir:         "testdata",
	}

	vals, err := app.BuildValues(testMapping(map[string]string{"WHO": "world"}))
	require.NoError(t, err)

	am, ok := vals["alertmanager"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, am["enabled"], "inline values override values files")
	assert.Equal(t, "hello world", vals["greeting"])

	// Values file subtrees not touched inline survive the merge.
	server, ok := vals["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "15d", server["retention"])
}

func TestBuildValuesMissingValuesFile(t *testing.T) {
	t.Parallel()

	app := appspec.App{
		ValuesFiles: []string{"absent.yaml"},
		Dir:         "testdata",
	}

	_, err := app.BuildValues(testMapping(nil))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate  func(*appspec.App)
		wantErr error
	}{
		"valid": {
			mutate: func(*appspec.App) {},
		},
		"empty version is valid": {
			mutate: func(a *appspec.App) { a.Version = "" },
		},
		"constraint version is valid": {
			mutate: func(a *appspec.App) { a.Version = ">=6.0.0 <7.0.0" },
		},
		"missing namespace": {
			mutate:  func(a *appspec.App) { a.Namespace = "" },
			wantErr: appspec.ErrMissingField,
		},
		"missing chart": {
			mutate:  func(a *appspec.App) { a.Chart = "" },
			wantErr: appspec.ErrMissingField,
		},
		"garbage version": {
			mutate:  func(a *appspec.App) { a.Version = "not@a@version" },
			wantErr: appspec.ErrInvalidVersion,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			app := appspec.App{
				ReleaseName: "podinfo",
				Namespace:   "apps",
				Repository:  "https://stefanprodan.github.io/podinfo",
				Chart:       "podinfo",
				Version:     "6.7.0",
			}
			tc.mutate(&app)

			err := app.Validate()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}
			require.NoError(t, err)
		})
	}
}
