package handlers

import (
	"context"
	"fmt"
	"os"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the manifest wizard.
	runWizard = RunWizard

	// writeManifest writes the manifest to a file.
	writeManifest = WriteManifest
)

// Init runs the manifest wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	hw := result.ToHelloWorld(Namespace)
	if err := writeManifest(hw, outputPath); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	printInitSuccess(outputPath, hw)

	return nil
}

// ToHelloWorld builds the resource from the wizard answers.
func (r *WizardResult) ToHelloWorld(namespace string) *helloworldv1alpha1.HelloWorld {
	return &helloworldv1alpha1.HelloWorld{
		TypeMeta: metav1.TypeMeta{
			APIVersion: helloworldv1alpha1.GroupVersion.String(),
			Kind:       "HelloWorld",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      r.ResourceName,
			Namespace: namespace,
		},
		Spec: helloworldv1alpha1.HelloWorldSpec{
			Name:     r.WorkloadName,
			Image:    r.Image,
			Data:     r.Data,
			Replicas: r.Replicas,
		},
	}
}

// WriteManifest marshals the resource to YAML and writes it to path.
func WriteManifest(hw *helloworldv1alpha1.HelloWorld, path string) error {
	data, err := yaml.Marshal(manifestOf(hw))
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// manifest is the on-disk shape of a HelloWorld: no status and no
// server-populated metadata.
type manifest struct {
	APIVersion string                            `json:"apiVersion"`
	Kind       string                            `json:"kind"`
	Metadata   manifestMetadata                  `json:"metadata"`
	Spec       helloworldv1alpha1.HelloWorldSpec `json:"spec"`
}

type manifestMetadata struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

func manifestOf(hw *helloworldv1alpha1.HelloWorld) manifest {
	return manifest{
		APIVersion: helloworldv1alpha1.GroupVersion.String(),
		Kind:       "HelloWorld",
		Metadata:   manifestMetadata{Name: hw.Name, Namespace: hw.Namespace},
		Spec:       hw.Spec,
	}
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("hwctl - HelloWorld manifest wizard")
	fmt.Println("==================================")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, hw *helloworldv1alpha1.HelloWorld) {
	fmt.Println()
	fmt.Println("Manifest saved!")
	fmt.Println()
	fmt.Printf("  File:     %s\n", outputPath)
	fmt.Printf("  Resource: %s/%s\n", hw.Namespace, hw.Name)
	fmt.Printf("  Workload: %s (%s)\n", hw.Spec.Name, hw.Spec.Image)
	fmt.Printf("  Replicas: %d\n", hw.Spec.Replicas)
	fmt.Println()
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  hwctl apply -f %s\n", outputPath)
	fmt.Println()
}
