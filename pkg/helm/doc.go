// Package helm provides functionality for interacting with Helm charts.
//
// This package implements operations such as chart templating, chart pulling, and
// dependency resolution. It abstracts away the complexities of working with Helm charts
// and provides a simplified interface for consumers to template, extract, and process charts.
package helm
