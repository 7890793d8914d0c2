package workload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/ihor-mutel/helloworld-operator/internal/util/ptr"
)

func setupScheme(t *testing.T) *runtime.Scheme {
	scheme := runtime.NewScheme()
	require.NoError(t, appsv1.AddToScheme(scheme))
	return scheme
}

func newSts(spec, status int32) *appsv1.StatefulSet {
	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
		Spec:       appsv1.StatefulSetSpec{Replicas: ptr.Int32(spec)},
		Status:     appsv1.StatefulSetStatus{Replicas: status},
	}
}

func TestNextReplicas(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		current   int32
		desired   int32
		want      int32
		direction Direction
	}{
		{"scale up by one from one", 1, 5, 2, DirectionUp},
		{"scale up by one from zero", 0, 2, 1, DirectionUp},
		{"scale down directly", 5, 1, 1, DirectionDown},
		{"scale down to zero", 3, 0, 0, DirectionDown},
		{"steady", 2, 2, 2, DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, dir := NextReplicas(tt.current, tt.desired)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.direction, dir)
		})
	}
}

func TestScaler_Get(t *testing.T) {
	scheme := setupScheme(t)

	t.Run("existing statefulset", func(t *testing.T) {
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(newSts(1, 1)).Build()
		sts, err := NewScaler(c).Get(context.Background(), "default", "web")
		require.NoError(t, err)
		assert.Equal(t, int32(1), Current(sts))
	})

	t.Run("missing statefulset is NotFound", func(t *testing.T) {
		c := fake.NewClientBuilder().WithScheme(scheme).Build()
		_, err := NewScaler(c).Get(context.Background(), "default", "web")
		assert.True(t, apierrors.IsNotFound(err))
	})
}

func TestScaler_ScaleTo(t *testing.T) {
	scheme := setupScheme(t)
	ctx := context.Background()

	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(newSts(2, 2)).Build()
	s := NewScaler(c)

	sts, err := s.Get(ctx, "default", "web")
	require.NoError(t, err)
	require.NoError(t, s.ScaleTo(ctx, sts, 7))

	updated := &appsv1.StatefulSet{}
	require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "default", Name: "web"}, updated))
	assert.Equal(t, int32(7), *updated.Spec.Replicas)
}

func TestScaler_ScaleTo_OverwritesConcurrentChange(t *testing.T) {
	scheme := setupScheme(t)
	ctx := context.Background()

	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(newSts(1, 1)).Build()
	s := NewScaler(c)

	stale, err := s.Get(ctx, "default", "web")
	require.NoError(t, err)

	// Someone else resizes the workload after our read.
	fresh, err := s.Get(ctx, "default", "web")
	require.NoError(t, err)
	fresh.Spec.Replicas = ptr.Int32(4)
	require.NoError(t, c.Update(ctx, fresh))

	require.NoError(t, s.ScaleTo(ctx, stale, 2), "no conflict token is sent")

	updated := &appsv1.StatefulSet{}
	require.NoError(t, c.Get(ctx, types.NamespacedName{Namespace: "default", Name: "web"}, updated))
	assert.Equal(t, int32(2), *updated.Spec.Replicas)
}

func TestScaler_ScaleTo_PatchError(t *testing.T) {
	scheme := setupScheme(t)
	boom := errors.New("boom")

	c := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(newSts(1, 1)).
		WithInterceptorFuncs(interceptor.Funcs{
			Patch: func(_ context.Context, _ client.WithWatch, _ client.Object, _ client.Patch, _ ...client.PatchOption) error {
				return boom
			},
		}).
		Build()
	s := NewScaler(c)

	sts, err := s.Get(context.Background(), "default", "web")
	require.NoError(t, err)
	err = s.ScaleTo(context.Background(), sts, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "default/web")
}
