// Package k8s wraps the client-go clientset with the pod operations the
// operator needs: reading logs, listing pods and watching pod lifecycle events.
package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps Kubernetes API operations on pods.
type Client struct {
	clientset kubernetes.Interface
	config    *rest.Config
}

// LoadRESTConfig builds a REST config from a kubeconfig file. An empty path
// falls back to $KUBECONFIG, ~/.kube/config and finally in-cluster config.
func LoadRESTConfig(kubeconfigPath string) (*rest.Config, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}
	return config, nil
}

// NewClient creates a new Kubernetes client from a kubeconfig file.
func NewClient(kubeconfigPath string) (*Client, error) {
	config, err := LoadRESTConfig(kubeconfigPath)
	if err != nil {
		return nil, err
	}
	return NewForConfig(config)
}

// NewForConfig creates a new Kubernetes client from a REST config.
func NewForConfig(config *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{
		clientset: clientset,
		config:    config,
	}, nil
}

// NewFromClientset wraps an existing clientset, e.g. a fake one in tests.
func NewFromClientset(clientset kubernetes.Interface, config *rest.Config) *Client {
	return &Client{
		clientset: clientset,
		config:    config,
	}
}

// Clientset returns the underlying clientset.
func (c *Client) Clientset() kubernetes.Interface {
	return c.clientset
}

// RESTConfig returns the REST config the client was built from. It is nil for
// clients created with NewFromClientset and a nil config.
func (c *Client) RESTConfig() *rest.Config {
	return c.config
}

// PodLogs returns the complete current log of a pod.
func (c *Client) PodLogs(ctx context.Context, namespace, name string) (string, error) {
	req := c.clientset.CoreV1().Pods(namespace).GetLogs(name, &corev1.PodLogOptions{})
	logs, err := req.DoRaw(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get logs of pod %s/%s: %w", namespace, name, err)
	}

	return string(logs), nil
}

// GetPods returns pods matching a label selector in a namespace.
func (c *Client) GetPods(ctx context.Context, namespace, labelSelector string) ([]corev1.Pod, error) {
	podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	return podList.Items, nil
}
