package workload

import (
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/util/labels"
	"github.com/ihor-mutel/helloworld-operator/internal/util/ptr"
)

const (
	// ContainerPort is the single port exposed by the workload container.
	ContainerPort = 80

	// DataFile is where the bootstrap payload is written inside a pod.
	DataFile = "/tmp/data.txt"

	// InitialReplicas is the replica count of a freshly created workload.
	InitialReplicas int32 = 1
)

// Command is the placeholder long-running process of the workload. It prints
// DataFile every few seconds, which makes the payload visible in the pod log.
func Command() []string {
	return []string{"sh", "-c", "while sleep 5; do cat " + DataFile + "; done"}
}

// PayloadPresent reports whether a pod log shows the payload. An empty
// payload is always present.
func PayloadPresent(logs, payload string) bool {
	return strings.Contains(logs, payload)
}

// NewStatefulSet builds the StatefulSet for a HelloWorld spec.
func NewStatefulSet(namespace string, spec helloworldv1alpha1.HelloWorldSpec) *appsv1.StatefulSet {
	selector := labels.ForApp(spec.Name)

	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: namespace,
			Labels:    labels.NewLabelBuilder(spec.Name).WithManagedBy(labels.ManagedByOperator).Build(),
		},
		Spec: appsv1.StatefulSetSpec{
			Replicas:    ptr.Int32(InitialReplicas),
			ServiceName: spec.Name,
			Selector: &metav1.LabelSelector{
				MatchLabels: selector,
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels.ForApp(spec.Name),
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:    spec.Name,
							Image:   spec.Image,
							Command: Command(),
							Ports: []corev1.ContainerPort{
								{ContainerPort: ContainerPort},
							},
						},
					},
				},
			},
		},
	}
}
