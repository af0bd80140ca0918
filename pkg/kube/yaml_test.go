package kube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvl/helm2yaml/pkg/kube"
)

const deploymentObject = `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: nginx-deployment
  labels:
    foo: bar
spec:
  template:
    metadata:
      labels:
        app: nginx
    spec:
      containers:
      - image: nginx:1.7.9
        name: nginx
        ports:
        - containerPort: 80
`

const invalidYAML = `
apiVersion: v1
	kind: Deployment
`

const invalidKubeResource = `
apiVersion: v1
kind: {foo: bar}
`

func TestSplitYAML_SingleObject(t *testing.T) {
	t.Parallel()

	objs, err := kube.SplitYAML([]byte(deploymentObject))
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestSplitYAML_MultipleObjects(t *testing.T) {
	t.Parallel()

	objs, err := kube.SplitYAML([]byte(deploymentObject + "\n---\n" + deploymentObject))
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

func TestSplitYAML_TrailingNewLines(t *testing.T) {
	t.Parallel()

	objs, err := kube.SplitYAML([]byte("\n\n\n---" + deploymentObject))
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

func TestSplitYAML_EmptyDocuments(t *testing.T) {
	t.Parallel()

	stream := "---\n# comment only\n---\n" + deploymentObject + "\n---\nnull\n---\n"

	docs, err := kube.SplitYAMLToString([]byte(stream))
	require.NoError(t, err)
	assert.Len(t, docs, 1, "comment-only and null documents are dropped")
}

func TestMarshalObject(t *testing.T) {
	t.Parallel()

	objs, err := kube.SplitYAML([]byte(deploymentObject))
	require.NoError(t, err)
	require.Len(t, objs, 1)

	out, err := kube.MarshalObject(objs[0])
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: Deployment")
	assert.Contains(t, string(out), "name: nginx-deployment")

	reparsed, err := kube.SplitYAML(out)
	require.NoError(t, err)
	require.Len(t, reparsed, 1)
	assert.Equal(t, objs[0].Object, reparsed[0].Object)
}

func TestSplitYAML_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := kube.SplitYAML([]byte(invalidYAML))
	require.Error(t, err)
	assert.ErrorIs(t, err, kube.ErrInvalidYAML)
}

func TestSplitYAML_InvalidKubeResource(t *testing.T) {
	t.Parallel()

	_, err := kube.SplitYAML([]byte(invalidKubeResource))
	require.Error(t, err)
	assert.ErrorIs(t, err, kube.ErrInvalidKubeResource)
}
