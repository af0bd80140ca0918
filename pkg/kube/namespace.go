package kube

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// NewNamespace returns a Namespace object for the given name. Helm treats
// release namespaces as implicit, so rendering pipelines that apply
// manifests with plain kubectl need the Namespace emitted explicitly.
func NewNamespace(name string) *corev1.Namespace {
	return &corev1.Namespace{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Namespace",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
	}
}

// MarshalNamespace renders a Namespace object as a YAML document.
func MarshalNamespace(ns *corev1.Namespace) ([]byte, error) {
	out, err := yaml.Marshal(ns)
	if err != nil {
		return nil, fmt.Errorf("marshal namespace %q: %w", ns.Name, err)
	}

	return out, nil
}
