// Package syncs provides synchronization primitives and utilities.
//
// This package implements concurrency control mechanisms and synchronization
// primitives to facilitate safe concurrent operations throughout the application.
package syncs
