// Package labels provides consistent labeling utilities for operator-managed
// Kubernetes objects.
//
// Pods of a workload are matched by the single app=<name> label. Objects the
// operator creates additionally carry the managed-by label so they can be
// told apart from user-created ones.
package labels

import (
	k8slabels "k8s.io/apimachinery/pkg/labels"
)

// Standard label keys.
const (
	// KeyApp selects the pods of a workload
	KeyApp = "app"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "app.kubernetes.io/managed-by"
)

// ManagedByOperator is the managed-by value set on created objects.
const ManagedByOperator = "helloworld-operator"

// LabelBuilder provides a fluent interface for building object labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the app label pre-set.
func NewLabelBuilder(app string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyApp: app,
		},
	}
}

// WithManagedBy sets who manages this object.
func (lb *LabelBuilder) WithManagedBy(manager string) *LabelBuilder {
	lb.labels[KeyManagedBy] = manager
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// ForApp returns the selector labels of a workload.
func ForApp(app string) map[string]string {
	return NewLabelBuilder(app).Build()
}

// SelectorForApp returns a label selector string for all pods of a workload.
func SelectorForApp(app string) string {
	return k8slabels.SelectorFromSet(ForApp(app)).String()
}
