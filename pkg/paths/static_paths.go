// Copyright 2017-2018 The Argo Authors
// Modifications Copyright 2024-2025 Jacob Colvin
// Licensed under the Apache License, Version 2.0.

package paths

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// PathEncoder is a bijective encoding between cache keys and path segments.
type PathEncoder interface {
	Encode(key string) string
	Decode(key string) (string, error)
}

// StaticTempPaths maps cache keys to stable filesystem paths for storing
// pulled chart archives. Rather than holding a key->path table in memory,
// keys are converted to path segments with a reversible encoding, so the
// chart cache survives across invocations.
type StaticTempPaths struct {
	pe   PathEncoder
	root string
}

// NewStaticTempPaths creates a [StaticTempPaths] rooted at the given
// directory, creating it if needed.
func NewStaticTempPaths(root string, pe PathEncoder) *StaticTempPaths {
	err := os.MkdirAll(root, 0o700)
	if err != nil {
		panic(err)
	}

	return &StaticTempPaths{
		root: root,
		pe:   pe,
	}
}

func (p *StaticTempPaths) keyToPath(key string) string {
	return filepath.Join(p.root, p.pe.Encode(key))
}

func (p *StaticTempPaths) pathToKey(path string) string {
	key, err := p.pe.Decode(filepath.Base(path))
	if err != nil {
		panic(fmt.Errorf("failed to decode key for %s: %w", path, err))
	}

	return key
}

// Add is a no-op; paths are derived from keys rather than stored.
func (p *StaticTempPaths) Add(_, _ string) {
}

// GetPath returns the path for the given key.
func (p *StaticTempPaths) GetPath(key string) (string, error) {
	return p.keyToPath(key), nil
}

// GetKey returns the key encoded in the given path.
func (p *StaticTempPaths) GetKey(path string) (string, error) {
	return p.pathToKey(path), nil
}

// GetPathIfExists returns the path for the given key if something exists
// there. Otherwise, it returns an empty string.
func (p *StaticTempPaths) GetPathIfExists(key string) string {
	path := p.keyToPath(key)
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	return path
}

// GetPaths returns the map of keys to paths currently present on disk.
func (p *StaticTempPaths) GetPaths() map[string]string {
	ds, err := os.ReadDir(p.root)
	if err != nil {
		panic(err)
	}

	paths := map[string]string{}

	for _, d := range ds {
		path := filepath.Join(p.root, d.Name())
		paths[p.pathToKey(path)] = path
	}

	return paths
}

// Base64PathEncoder encodes keys with URL-safe base64.
type Base64PathEncoder struct{}

// NewBase64PathEncoder creates a new [Base64PathEncoder].
func NewBase64PathEncoder() *Base64PathEncoder {
	return &Base64PathEncoder{}
}

func (*Base64PathEncoder) Encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func (*Base64PathEncoder) Decode(s string) (string, error) {
	d, err := base64.URLEncoding.DecodeString(s)

	return string(d), err
}
