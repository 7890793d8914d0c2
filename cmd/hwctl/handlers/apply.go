package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
)

// Apply creates the HelloWorld from a manifest or replaces the spec of the
// existing one.
func Apply(ctx context.Context, path string) error {
	hw, err := LoadManifest(path)
	if err != nil {
		return err
	}
	if hw.Namespace == "" {
		hw.Namespace = Namespace
	}

	c, err := newResourceClient(Kubeconfig)
	if err != nil {
		return err
	}

	existing := &helloworldv1alpha1.HelloWorld{}
	err = c.Get(ctx, client.ObjectKeyFromObject(hw), existing)
	switch {
	case apierrors.IsNotFound(err):
		if err := c.Create(ctx, hw); err != nil {
			return fmt.Errorf("failed to create HelloWorld: %w", err)
		}
		fmt.Printf("helloworld.acme.org/%s created\n", hw.Name)
		return nil
	case err != nil:
		return fmt.Errorf("failed to get HelloWorld: %w", err)
	}

	if existing.Spec == hw.Spec {
		fmt.Printf("helloworld.acme.org/%s unchanged\n", hw.Name)
		return nil
	}

	existing.Spec = hw.Spec
	if err := c.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update HelloWorld: %w", err)
	}
	fmt.Printf("helloworld.acme.org/%s configured\n", hw.Name)
	return nil
}

// LoadManifest reads and validates a HelloWorld manifest.
func LoadManifest(path string) (*helloworldv1alpha1.HelloWorld, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	hw := &helloworldv1alpha1.HelloWorld{}
	if err := yaml.UnmarshalStrict(data, hw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if hw.Kind != "" && hw.Kind != "HelloWorld" {
		return nil, fmt.Errorf("unexpected kind %q, want HelloWorld", hw.Kind)
	}
	if err := validateSpec(hw); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return hw, nil
}

func validateSpec(hw *helloworldv1alpha1.HelloWorld) error {
	var errs []error
	if hw.Name == "" {
		errs = append(errs, errors.New("metadata.name is required"))
	}
	if hw.Spec.Name == "" {
		errs = append(errs, errors.New("spec.name is required"))
	}
	if hw.Spec.Image == "" {
		errs = append(errs, errors.New("spec.image is required"))
	}
	if hw.Spec.Data == "" {
		errs = append(errs, errors.New("spec.data is required"))
	}
	if hw.Spec.Replicas < 0 {
		errs = append(errs, fmt.Errorf("spec.replicas must not be negative, got %d", hw.Spec.Replicas))
	}
	return errors.Join(errs...)
}
