package helmrepo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvl/helm2yaml/pkg/helmrepo"
)

func TestAddRepo(t *testing.T) {
	t.Parallel()

	manager := helmrepo.NewManager()

	err := manager.Add(&helmrepo.Repo{
		Name: "stable",
		URL:  "https://example.com/charts",
	})
	require.NoError(t, err)

	err = manager.Add(&helmrepo.Repo{
		Name: "stable",
		URL:  "https://other.example.com/charts",
	})
	require.Error(t, err, "duplicate name must be rejected")
}

func TestAddMap(t *testing.T) {
	t.Parallel()

	manager := helmrepo.NewManager()

	err := manager.AddMap(map[string]string{
		"stable":  "https://example.com/charts",
		"private": "oci://registry.example.com/charts",
	})
	require.NoError(t, err)

	repo, err := manager.GetByName("private")
	require.NoError(t, err)
	assert.True(t, repo.IsOCI())
	assert.False(t, repo.IsLocal())
}

func TestGetRepoByName(t *testing.T) {
	t.Parallel()

	manager := helmrepo.NewManager()

	err := manager.Add(&helmrepo.Repo{
		Name: "stable",
		URL:  "https://example.com/charts",
	})
	require.NoError(t, err)

	repo, err := manager.Get("@stable")
	require.NoError(t, err)
	assert.Equal(t, "stable", repo.Name)
	assert.False(t, repo.IsLocal())

	_, err = manager.Get("@missing")
	require.Error(t, err)
}

func TestGetRepoByURL(t *testing.T) {
	t.Parallel()

	manager := helmrepo.NewManager()

	err := manager.Add(&helmrepo.Repo{
		Name:     "stable",
		URL:      "https://example.com/charts",
		Username: "user",
		Password: "pass",
	})
	require.NoError(t, err)

	repo, err := manager.Get("https://example.com/charts")
	require.NoError(t, err)
	assert.Equal(t, "user", repo.Username)

	// Unknown URLs produce an ad hoc anonymous repo.
	repo, err = manager.Get("https://unknown.example.com/charts")
	require.NoError(t, err)
	assert.Empty(t, repo.Username)
	assert.Equal(t, "https://unknown.example.com/charts", repo.URL)
}

func TestLocalRepo(t *testing.T) {
	t.Parallel()

	manager := helmrepo.NewManager()

	repo, err := manager.Get("./testdata")
	require.NoError(t, err)
	assert.True(t, repo.IsLocal())
}
