package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/client"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
)

const sampleManifest = `apiVersion: acme.org/v1alpha1
kind: HelloWorld
metadata:
  name: hello-world-example
spec:
  name: web
  image: nginx
  data: Example of injected data
  replicas: 2
`

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	t.Run("valid manifest", func(t *testing.T) {
		t.Parallel()
		hw, err := LoadManifest(writeFile(t, "hw.yaml", sampleManifest))
		require.NoError(t, err)
		assert.Equal(t, "hello-world-example", hw.Name)
		assert.Equal(t, "web", hw.Spec.Name)
		assert.Equal(t, "nginx", hw.Spec.Image)
		assert.Equal(t, "Example of injected data", hw.Spec.Data)
		assert.Equal(t, int32(2), hw.Spec.Replicas)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadManifest(t.TempDir() + "/missing.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read manifest")
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := LoadManifest(writeFile(t, "hw.yaml", sampleManifest+"  size: 3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse manifest")
	})

	t.Run("wrong kind", func(t *testing.T) {
		t.Parallel()
		content := "kind: ConfigMap\nmetadata:\n  name: x\n"
		_, err := LoadManifest(writeFile(t, "hw.yaml", content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unexpected kind "ConfigMap"`)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		content := "kind: HelloWorld\nmetadata:\n  name: x\nspec:\n  replicas: -1\n"
		_, err := LoadManifest(writeFile(t, "hw.yaml", content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "spec.name is required")
		assert.Contains(t, err.Error(), "spec.image is required")
		assert.Contains(t, err.Error(), "spec.data is required")
		assert.Contains(t, err.Error(), "spec.replicas must not be negative")
	})
}

func TestApply_Create(t *testing.T) {
	saveAndRestoreFactories(t)
	Namespace = "apps"
	c := useFakeClient(t)
	path := writeFile(t, "hw.yaml", sampleManifest)

	output := captureOutput(func() {
		require.NoError(t, Apply(context.Background(), path))
	})
	assert.Contains(t, output, "helloworld.acme.org/hello-world-example created")

	hw := &helloworldv1alpha1.HelloWorld{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKey{Namespace: "apps", Name: "hello-world-example"}, hw))
	assert.Equal(t, int32(2), hw.Spec.Replicas)
}

func TestApply_Update(t *testing.T) {
	saveAndRestoreFactories(t)
	existing := testHelloWorld()
	existing.Spec.Replicas = 5
	existing.Labels = map[string]string{"team": "a"}
	c := useFakeClient(t, existing)
	path := writeFile(t, "hw.yaml", sampleManifest)

	output := captureOutput(func() {
		require.NoError(t, Apply(context.Background(), path))
	})
	assert.Contains(t, output, "configured")

	hw := &helloworldv1alpha1.HelloWorld{}
	require.NoError(t, c.Get(context.Background(), client.ObjectKeyFromObject(existing), hw))
	assert.Equal(t, int32(2), hw.Spec.Replicas)
	assert.Equal(t, "a", hw.Labels["team"], "metadata of the existing resource is kept")
}

func TestApply_Unchanged(t *testing.T) {
	saveAndRestoreFactories(t)
	useFakeClient(t, testHelloWorld())
	path := writeFile(t, "hw.yaml", sampleManifest)

	output := captureOutput(func() {
		require.NoError(t, Apply(context.Background(), path))
	})
	assert.Contains(t, output, "unchanged")
}

func TestApply_ClientError(t *testing.T) {
	saveAndRestoreFactories(t)
	newResourceClient = func(string) (client.Client, error) {
		return nil, errors.New("no kubeconfig")
	}
	path := writeFile(t, "hw.yaml", sampleManifest)

	err := Apply(context.Background(), path)
	assert.EqualError(t, err, "no kubeconfig")
}
