// Package helmrepo provides functionality for managing Helm chart repositories.
//
// This package handles repository operations such as adding, updating, and fetching
// from Helm chart repositories. It supports authentication, TLS, and other repository
// configuration options.
package helmrepo
