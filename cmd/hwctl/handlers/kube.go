// Package handlers implements the hwctl commands.
package handlers

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/k8s"
	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
)

// Global flags, bound by the root command.
var (
	// Kubeconfig is the kubeconfig path; empty uses the default loading rules.
	Kubeconfig string

	// Namespace holds the HelloWorld resource.
	Namespace = "default"
)

// podReader lists pods and reads their logs.
type podReader interface {
	GetPods(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error)
	PodLogs(ctx context.Context, namespace, name string) (string, error)
}

// execRunner waits for a pod and runs a command in it, blocking until the
// session ends.
type execRunner interface {
	WaitForPodRunning(ctx context.Context, namespace, name string, timeout time.Duration) error
	Run(ctx context.Context, target podexec.Target, command []string, listener podexec.Listener)
}

// podExec combines the pod client with an exec channel.
type podExec struct {
	*k8s.Client
	*podexec.Channel
}

// Factory function variables - can be replaced in tests.
var (
	newResourceClient = func(kubeconfig string) (client.Client, error) {
		cfg, err := k8s.LoadRESTConfig(kubeconfig)
		if err != nil {
			return nil, err
		}
		c, err := client.New(cfg, client.Options{Scheme: helloworldv1alpha1.Scheme})
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}
		return c, nil
	}

	newPodReader = func(kubeconfig string) (podReader, error) {
		c, err := k8s.NewClient(kubeconfig)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	newExecRunner = func(kubeconfig string) (execRunner, error) {
		c, err := k8s.NewClient(kubeconfig)
		if err != nil {
			return nil, err
		}
		return podExec{
			Client:  c,
			Channel: podexec.NewChannel(c.RESTConfig(), c.Clientset(), podexec.WithMetrics(false)),
		}, nil
	}
)

// getHelloWorld fetches a HelloWorld from the selected namespace.
func getHelloWorld(ctx context.Context, c client.Client, name string) (*helloworldv1alpha1.HelloWorld, error) {
	hw := &helloworldv1alpha1.HelloWorld{}
	if err := c.Get(ctx, client.ObjectKey{Namespace: Namespace, Name: name}, hw); err != nil {
		return nil, fmt.Errorf("failed to get HelloWorld %s/%s: %w", Namespace, name, err)
	}
	return hw, nil
}
