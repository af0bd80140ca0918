// Package appspec loads declarative Helm application specs.
//
// Two input formats are supported: Helmsman desired-state files and Flux
// HelmRelease manifests. Both are normalized into [App], the common shape
// consumed by the renderer: a release with a chart reference, a target
// namespace, and its values.
package appspec
