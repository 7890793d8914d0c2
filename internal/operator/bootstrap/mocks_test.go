package bootstrap

import (
	"context"
	"sync"
	"time"

	appsv1 "k8s.io/api/apps/v1"

	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
)

// MockLogReader returns Responses in order and repeats the last one.
type MockLogReader struct {
	mu sync.Mutex

	Responses []string
	Err       error

	Calls []string
}

func (m *MockLogReader) PodLogs(_ context.Context, namespace, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, namespace+"/"+name)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Calls) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// MockCommandStarter records exec sessions and closes them immediately.
type MockCommandStarter struct {
	mu sync.Mutex

	// OnStart runs synchronously inside Start when set.
	OnStart func(target podexec.Target, command []string)

	Calls []StartCall
}

// StartCall tracks arguments to Start.
type StartCall struct {
	Target  podexec.Target
	Command []string
}

func (m *MockCommandStarter) Start(_ context.Context, target podexec.Target, command []string, _ podexec.Listener) <-chan struct{} {
	m.mu.Lock()
	m.Calls = append(m.Calls, StartCall{Target: target, Command: command})
	m.mu.Unlock()

	if m.OnStart != nil {
		m.OnStart(target, command)
	}
	done := make(chan struct{})
	close(done)
	return done
}

// MockScaler is a mock implementation of WorkloadScaler for testing.
type MockScaler struct {
	mu sync.Mutex

	GetFunc     func(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)
	ScaleToFunc func(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error

	GetCalls     []string
	ScaleToCalls []int32
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
	m.ScaleToCalls = append(m.ScaleToCalls, replicas)
	m.mu.Unlock()

	if m.ScaleToFunc != nil {
		return m.ScaleToFunc(ctx, sts, replicas)
	}
	return nil
}

// recordingDelay returns immediately and remembers requested durations.
type recordingDelay struct {
	mu    sync.Mutex
	waits []time.Duration
	err   error

	// onWait runs on every wait, outside the lock
	onWait func()
}

func (d *recordingDelay) Wait(_ context.Context, duration time.Duration) error {
	if d.onWait != nil {
		d.onWait()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits = append(d.waits, duration)
	return d.err
}
