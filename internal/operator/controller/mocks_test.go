package controller

import (
	"context"
	"sync"

	appsv1 "k8s.io/api/apps/v1"
)

// MockScaler is a mock implementation of workloadScaler for testing.
type MockScaler struct {
	mu sync.Mutex

	// Configurable responses
	GetFunc     func(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)
	ScaleToFunc func(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error

	// Call tracking
	GetCalls     []string
	ScaleToCalls []ScaleToCall
}

// ScaleToCall tracks arguments to ScaleTo.
type ScaleToCall struct {
	Name     string
	Replicas int32
}

func (m *MockScaler) Get(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, namespace+"/"+name)
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx, namespace, name)
	}
	return &appsv1.StatefulSet{}, nil
}

func (m *MockScaler) ScaleTo(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error {
	m.mu.Lock()
	m.ScaleToCalls = append(m.ScaleToCalls, ScaleToCall{Name: sts.Name, Replicas: replicas})
	m.mu.Unlock()

	if m.ScaleToFunc != nil {
		return m.ScaleToFunc(ctx, sts, replicas)
	}
	return nil
}
