// Package kube provides utilities for working with Kubernetes resource
// manifests.
//
// Raw YAML manifest streams can be split into individual objects with
// [SplitYAML], and Namespace resources can be produced for rendered
// releases with [NewNamespace].
package kube
