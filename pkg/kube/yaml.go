// The document splitting below is derived from the Argo GitOps Engine:
// https://github.com/argoproj/gitops-engine/blob/54992bf42431e71f71f11647e82105530e56305e/pkg/utils/kube/kube.go#L304-L346
//
// Copyright 2017-2018 The Argo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kube

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	kubeyaml "k8s.io/apimachinery/pkg/util/yaml"
)

var (
	ErrInvalidYAML         = errors.New("invalid yaml")
	ErrInvalidKubeResource = errors.New("invalid kubernetes resource")
)

// SplitYAML splits a multi-document manifest stream into unstructured
// objects. On a malformed document, the objects decoded so far are
// returned alongside the error.
func SplitYAML(manifests []byte) ([]*unstructured.Unstructured, error) {
	docs, err := SplitYAMLToString(manifests)
	if err != nil {
		return nil, fmt.Errorf("split manifest stream: %w", err)
	}

	objs := make([]*unstructured.Unstructured, 0, len(docs))

	for _, doc := range docs {
		obj := &unstructured.Unstructured{}

		err := yaml.Unmarshal([]byte(doc), obj)
		if err != nil {
			return objs, fmt.Errorf("%w: %w", ErrInvalidKubeResource, err)
		}

		objs = append(objs, obj)
	}

	return objs, nil
}

// SplitYAMLToString splits a multi-document manifest stream into its
// individual non-empty documents. Documents that decode to nothing
// (comments only, or a literal `null`) are dropped, which is also what
// kubectl's resource visitor does with helm output.
func SplitYAMLToString(manifests []byte) ([]string, error) {
	d := kubeyaml.NewYAMLOrJSONDecoder(bytes.NewReader(manifests), 4096)

	var docs []string

	for {
		raw := runtime.RawExtension{}

		err := d.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}

		if err != nil {
			return docs, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
		}

		doc := bytes.TrimSpace(raw.Raw)
		if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
			continue
		}

		docs = append(docs, string(doc))
	}
}

// MarshalObject renders an unstructured object as a YAML document.
func MarshalObject(obj *unstructured.Unstructured) ([]byte, error) {
	out, err := yaml.Marshal(obj.Object)
	if err != nil {
		return nil, fmt.Errorf("marshal %s %q: %w", obj.GetKind(), obj.GetName(), err)
	}

	return out, nil
}
