package config

import (
	"errors"
	"fmt"
	"time"
)

// Default values.
const (
	DefaultNamespace        = "default"
	DefaultResourceName     = "hello-world-example"
	DefaultStabilizeDelay   = 10 * time.Second
	DefaultVerifyDelay      = 10 * time.Second
	DefaultWatchRetryDelay  = 5 * time.Second
	DefaultBootstrapWorkers = 1
)

// Operator holds the settings of the reconciler and the bootstrap watcher.
type Operator struct {
	// Namespace holds the HelloWorld resource, its StatefulSet and pods
	Namespace string `yaml:"namespace"`

	// ResourceName is the HelloWorld the bootstrap watcher serves
	ResourceName string `yaml:"resourceName"`

	// StabilizeDelay is waited after a pod was added, before its log is read
	StabilizeDelay time.Duration `yaml:"stabilizeDelay"`

	// VerifyDelay is waited between injecting and re-reading the log
	VerifyDelay time.Duration `yaml:"verifyDelay"`

	// WatchRetryDelay is the pause before re-opening a failed pod watch
	WatchRetryDelay time.Duration `yaml:"watchRetryDelay"`

	// BootstrapWorkers is the number of pod events handled concurrently
	BootstrapWorkers int `yaml:"bootstrapWorkers"`

	// SerializeBootstrap allows one bootstrap sequence per resource at a time
	SerializeBootstrap bool `yaml:"serializeBootstrap"`
}

// Default returns the built-in configuration.
func Default() *Operator {
	return &Operator{
		Namespace:        DefaultNamespace,
		ResourceName:     DefaultResourceName,
		StabilizeDelay:   DefaultStabilizeDelay,
		VerifyDelay:      DefaultVerifyDelay,
		WatchRetryDelay:  DefaultWatchRetryDelay,
		BootstrapWorkers: DefaultBootstrapWorkers,
	}
}

// Validate checks the configuration for values the operator cannot run with.
func (o *Operator) Validate() error {
	var errs []error

	if o.Namespace == "" {
		errs = append(errs, errors.New("namespace is required"))
	}
	if o.ResourceName == "" {
		errs = append(errs, errors.New("resourceName is required"))
	}
	if o.StabilizeDelay < 0 {
		errs = append(errs, fmt.Errorf("stabilizeDelay must not be negative, got %s", o.StabilizeDelay))
	}
	if o.VerifyDelay < 0 {
		errs = append(errs, fmt.Errorf("verifyDelay must not be negative, got %s", o.VerifyDelay))
	}
	if o.WatchRetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("watchRetryDelay must be positive, got %s", o.WatchRetryDelay))
	}
	if o.BootstrapWorkers < 1 {
		errs = append(errs, fmt.Errorf("bootstrapWorkers must be at least 1, got %d", o.BootstrapWorkers))
	}

	return errors.Join(errs...)
}
