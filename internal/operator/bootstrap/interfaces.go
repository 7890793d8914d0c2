package bootstrap

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"

	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
)

// LogReader returns the current log text of a pod.
type LogReader interface {
	PodLogs(ctx context.Context, namespace, name string) (string, error)
}

// CommandStarter opens an exec session without waiting for it to finish.
type CommandStarter interface {
	Start(ctx context.Context, target podexec.Target, command []string, listener podexec.Listener) <-chan struct{}
}

// WorkloadScaler reads and resizes the StatefulSet backing a HelloWorld.
type WorkloadScaler interface {
	Get(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)
	ScaleTo(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error
}
