package controller

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
)

// ResourceHandler receives HelloWorld lifecycle callbacks.
type ResourceHandler interface {
	// OnResourceChanged is called for every create or update of a HelloWorld.
	OnResourceChanged(ctx context.Context, hw *helloworldv1alpha1.HelloWorld) (ctrl.Result, error)

	// OnResourceDeleted is called once the HelloWorld can no longer be found.
	OnResourceDeleted(ctx context.Context, key types.NamespacedName) error
}

// workloadScaler defines the StatefulSet operations used by the reconciler.
// This interface enables testing with mocks.
type workloadScaler interface {
	// Get returns the StatefulSet or a NotFound error.
	Get(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)

	// ScaleTo sets the replica count of the StatefulSet.
	ScaleTo(ctx context.Context, sts *appsv1.StatefulSet, replicas int32) error
}
