package helmrepo

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// DefaultManager is a shared [Manager] for repos registered at runtime.
var DefaultManager = NewManager()

// Repo describes a Helm chart repository. The zero value of the optional
// credential fields means anonymous access.
type Repo struct {
	// Name allows charts to reference the repository as `@name`.
	Name string `json:"name"`
	URL  string `json:"url"`
	url  *url.URL

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	CAFile   string `json:"caFile,omitempty"`
	CertFile string `json:"certFile,omitempty"`
	KeyFile  string `json:"keyFile,omitempty"`

	InsecureSkipVerify bool `json:"insecureSkipVerify,omitempty"`
	PassCredentials    bool `json:"passCredentials,omitempty"`
}

// IsLocal reports whether the repo URL is a local file path, i.e. a
// directory of unpacked charts rather than a remote index.
func (r *Repo) IsLocal() bool {
	return r.url.Host == ""
}

// IsOCI reports whether the repo is an OCI registry reference.
func (r *Repo) IsOCI() bool {
	return r.url.Scheme == "oci"
}

// Getter resolves a repository alias or URL into a [Repo].
type Getter interface {
	Get(repo string) (*Repo, error)
}

// Manager is a thread-safe collection of [Repo]s, indexed both by alias
// and by canonical URL.
type Manager struct {
	reposByName map[string]*Repo
	reposByURL  map[string]*Repo

	mu sync.RWMutex
}

// NewManager creates a new [Manager].
func NewManager() *Manager {
	return &Manager{
		reposByName: make(map[string]*Repo),
		reposByURL:  make(map[string]*Repo),
	}
}

// Add adds a new repo to the [Manager]. If a repo with the same name or URL
// already exists, an error is returned.
func (m *Manager) Add(repo *Repo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reposByName[repo.Name]; ok {
		return fmt.Errorf("repo with name %q already exists", repo.Name)
	}

	u, err := url.Parse(repo.URL)
	if err != nil {
		return fmt.Errorf("parse URL %q: %w", repo.URL, err)
	}
	repoURL := u.String()

	if _, ok := m.reposByURL[repoURL]; ok {
		return fmt.Errorf("repo with URL %q already exists", repo.URL)
	}

	repo.url = u
	m.reposByName[repo.Name] = repo
	m.reposByURL[repoURL] = repo

	return nil
}

// AddMap registers a name->URL map of repositories, e.g. the `helmRepos`
// section of a Helmsman desired-state file. Re-registering an identical
// name/URL pair is a no-op, so maps from multiple files can be merged.
func (m *Manager) AddMap(repos map[string]string) error {
	for name, repoURL := range repos {
		if existing, err := m.GetByName(name); err == nil {
			if existing.URL == repoURL {
				continue
			}

			return fmt.Errorf("repo %q already registered with URL %q", name, existing.URL)
		}

		err := m.Add(&Repo{Name: name, URL: repoURL})
		if err != nil {
			return fmt.Errorf("add repo %q: %w", name, err)
		}
	}

	return nil
}

// Get returns a repo by its name or URL. Names are prefixed with `@`;
// anything else is treated as a URL.
func (m *Manager) Get(repo string) (*Repo, error) {
	if strings.HasPrefix(repo, "@") {
		return m.GetByName(strings.TrimPrefix(repo, "@"))
	}

	return m.GetByURL(repo)
}

// GetByName returns a repo by its name. If the repo does not exist in the
// [Manager], an error is returned.
func (m *Manager) GetByName(name string) (*Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	repo, ok := m.reposByName[name]
	if !ok {
		return nil, fmt.Errorf("repo with name %q not found", name)
	}

	return repo, nil
}

// GetByURL returns a repo by its URL. If the repo does not exist in the
// [Manager], a new anonymous [Repo] is created with the URL as the name.
func (m *Manager) GetByURL(repoURL string) (*Repo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, err := url.Parse(repoURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL %q: %w", repoURL, err)
	}
	repoURL = u.String()

	repo, ok := m.reposByURL[repoURL]
	if !ok {
		return &Repo{
			Name: repoURL,
			URL:  repoURL,
			url:  u,
		}, nil
	}

	return repo, nil
}
