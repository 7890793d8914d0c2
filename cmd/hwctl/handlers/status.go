package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/k8s"
	"github.com/ihor-mutel/helloworld-operator/internal/util/labels"
	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

// ResourceStatus is the observed state of a HelloWorld and its pods.
type ResourceStatus struct {
	Name      string      `json:"name"`
	Namespace string      `json:"namespace"`
	Workload  string      `json:"workload"`
	Image     string      `json:"image"`
	Desired   int32       `json:"desired"`
	Current   int32       `json:"current"`
	Target    int32       `json:"target"`
	Created   bool        `json:"created"`
	Pods      []PodStatus `json:"pods"`
}

// PodStatus reports whether a pod carries the payload.
type PodStatus struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	Ready    bool   `json:"ready"`
	Injected bool   `json:"injected"`
	Error    string `json:"error,omitempty"`
}

// Complete reports whether the workload reached the desired size and every
// pod shows the payload.
func (s *ResourceStatus) Complete() bool {
	if !s.Created || s.Current != s.Desired || len(s.Pods) != int(s.Desired) {
		return false
	}
	for _, p := range s.Pods {
		if !p.Injected {
			return false
		}
	}
	return true
}

// isInteractiveTTY can be replaced in tests.
var isInteractiveTTY = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Status prints the replica counts of a HelloWorld and the payload state of
// each of its pods.
func Status(ctx context.Context, name string, jsonOutput bool) error {
	c, err := newResourceClient(Kubeconfig)
	if err != nil {
		return err
	}
	pods, err := newPodReader(Kubeconfig)
	if err != nil {
		return err
	}

	status, err := collectStatus(ctx, c, pods, name)
	if err != nil {
		return err
	}

	if jsonOutput || !isInteractiveTTY() {
		return printStatusJSON(status)
	}
	fmt.Print(renderStatus(status))
	return nil
}

// collectStatus reads the resource, its StatefulSet and the pod logs.
func collectStatus(ctx context.Context, c client.Client, pods podReader, name string) (*ResourceStatus, error) {
	hw, err := getHelloWorld(ctx, c, name)
	if err != nil {
		return nil, err
	}

	status := &ResourceStatus{
		Name:      hw.Name,
		Namespace: hw.Namespace,
		Workload:  hw.Spec.Name,
		Image:     hw.Spec.Image,
		Desired:   hw.Spec.Replicas,
		Pods:      []PodStatus{},
	}

	sts := &appsv1.StatefulSet{}
	err = c.Get(ctx, client.ObjectKey{Namespace: hw.Namespace, Name: hw.Spec.Name}, sts)
	if apierrors.IsNotFound(err) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statefulset %s: %w", hw.Spec.Name, err)
	}
	status.Created = true
	status.Current = sts.Status.Replicas
	if sts.Spec.Replicas != nil {
		status.Target = *sts.Spec.Replicas
	}

	list, err := pods.GetPods(ctx, hw.Namespace, labels.SelectorForApp(hw.Spec.Name))
	if err != nil {
		return nil, err
	}
	for i := range list {
		status.Pods = append(status.Pods, podStatus(ctx, pods, hw, &list[i]))
	}
	return status, nil
}

func podStatus(ctx context.Context, pods podReader, hw *helloworldv1alpha1.HelloWorld, pod *corev1.Pod) PodStatus {
	ps := PodStatus{
		Name:  pod.Name,
		Phase: string(pod.Status.Phase),
		Ready: k8s.IsPodReady(pod),
	}
	logs, err := pods.PodLogs(ctx, hw.Namespace, pod.Name)
	if err != nil {
		ps.Error = err.Error()
		return ps
	}
	ps.Injected = workload.PayloadPresent(logs, hw.Spec.Data)
	return ps
}

func printStatusJSON(status *ResourceStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
