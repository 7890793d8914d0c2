package workload

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/ihor-mutel/helloworld-operator/internal/util/ptr"
)

// Direction describes a replica change.
type Direction string

const (
	DirectionNone Direction = "none"
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Current returns the observed replica count of a StatefulSet.
func Current(sts *appsv1.StatefulSet) int32 {
	return sts.Status.Replicas
}

// NextReplicas applies the replica policy: at most one step up, straight down.
func NextReplicas(current, desired int32) (int32, Direction) {
	switch {
	case current < desired:
		return current + 1, DirectionUp
	case current > desired:
		return desired, DirectionDown
	default:
		return current, DirectionNone
	}
}

// Scaler reads and resizes StatefulSets.
type Scaler struct {
	client client.Client
}

// NewScaler creates a Scaler on top of a controller-runtime client.
func NewScaler(c client.Client) *Scaler {
	return &Scaler{client: c}
}

// Get fetches a StatefulSet. NotFound errors are returned unwrapped so callers
// can test them with apierrors.IsNotFound.
func (s *Scaler) Get(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error) {
	sts := &appsv1.StatefulSet{}
	if err := s.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, sts); err != nil {
		return nil, err
	}
	return sts, nil
}

// ScaleTo sets spec.replicas with a merge patch. The patch carries no
// resourceVersion, so a concurrent change to the replica count is overwritten.
func (s *Scaler) ScaleTo(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error {
	base := sts.DeepCopy()
	sts.Spec.Replicas = ptr.Int32(replicas)
	if err := s.client.Patch(ctx, sts, client.MergeFrom(base)); err != nil {
		return fmt.Errorf("failed to scale statefulset %s/%s to %d: %w", sts.Namespace, sts.Name, replicas, err)
	}
	return nil
}
