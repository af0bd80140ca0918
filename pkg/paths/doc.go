// Package paths provides utilities for working with file and URL paths.
//
// This package implements functions for manipulating, validating, and resolving
// paths in a consistent manner throughout the application.
package paths
