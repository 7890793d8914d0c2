package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/ihor-mutel/helloworld-operator/internal/config"
)

// WizardResult holds the user's choices from the wizard.
type WizardResult struct {
	ResourceName string
	WorkloadName string
	Image        string
	Data         string
	Replicas     int32
}

// defaultWizardResult returns the values preselected in the wizard.
func defaultWizardResult() *WizardResult {
	return &WizardResult{
		ResourceName: config.DefaultResourceName,
		WorkloadName: "web",
		Image:        "nginx",
		Data:         "Example of injected data",
		Replicas:     2,
	}
}

// RunWizard asks for the fields of a HelloWorld manifest.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := defaultWizardResult()
	replicas := strconv.Itoa(int(result.Replicas))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Resource name").
				Description("Name of the HelloWorld resource").
				Value(&result.ResourceName).
				Validate(validateDNSLabel),
			huh.NewInput().
				Title("Workload name").
				Description("Name of the StatefulSet and its container").
				Value(&result.WorkloadName).
				Validate(validateDNSLabel),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Container image").
				Value(&result.Image).
				Validate(validateNotEmpty("image")),
			huh.NewText().
				Title("Payload").
				Description("Written to /tmp/data.txt in every pod and expected in the pod log").
				Value(&result.Data).
				Validate(validateNotEmpty("payload")),
			huh.NewInput().
				Title("Replicas").
				Description("Desired number of pods").
				Value(&replicas).
				Validate(validateReplicas),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}

	n, err := strconv.ParseInt(replicas, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid replicas: %w", err)
	}
	result.Replicas = int32(n)

	return result, nil
}

func validateDNSLabel(s string) error {
	if errs := validation.IsDNS1123Label(s); len(errs) > 0 {
		return errors.New(errs[0])
	}
	return nil
}

func validateNotEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateReplicas(s string) error {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return errors.New("must be a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
