package controller

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

// Event reasons emitted on the HelloWorld resource.
const (
	EventReasonCreated     = "StatefulSetCreated"
	EventReasonScalingUp   = "ScalingUp"
	EventReasonScalingDown = "ScalingDown"
	EventReasonScaleError  = "ScaleError"
)

// HelloWorldReconciler reconciles a HelloWorld object.
type HelloWorldReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// namespace holds the StatefulSets. Empty means the resource's namespace.
	namespace     string
	scaler        workloadScaler
	enableMetrics bool
}

var _ ResourceHandler = (*HelloWorldReconciler)(nil)

// Option configures a HelloWorldReconciler.
type Option func(*HelloWorldReconciler)

// WithNamespace places the StatefulSets in a fixed namespace.
func WithNamespace(ns string) Option {
	return func(r *HelloWorldReconciler) {
		r.namespace = ns
	}
}

// WithScaler replaces the StatefulSet scaler.
func WithScaler(s workloadScaler) Option {
	return func(r *HelloWorldReconciler) {
		r.scaler = s
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enabled bool) Option {
	return func(r *HelloWorldReconciler) {
		r.enableMetrics = enabled
	}
}

// NewHelloWorldReconciler creates a new HelloWorldReconciler.
func NewHelloWorldReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, opts ...Option) *HelloWorldReconciler {
	r := &HelloWorldReconciler{
		Client:        c,
		Scheme:        scheme,
		Recorder:      recorder,
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scaler == nil {
		r.scaler = workload.NewScaler(c)
	}
	return r
}

// +kubebuilder:rbac:groups=acme.org,resources=helloworlds,verbs=get;list;watch
// +kubebuilder:rbac:groups=apps,resources=statefulsets,verbs=get;list;watch;create;patch
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=pods/log,verbs=get
// +kubebuilder:rbac:groups="",resources=pods/exec,verbs=create;get
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch
// +kubebuilder:rbac:groups=coordination.k8s.io,resources=leases,verbs=get;create;update

// Reconcile fetches the HelloWorld and hands it to the ResourceHandler
// callbacks. A resource that is gone is routed to OnResourceDeleted.
func (r *HelloWorldReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	start := time.Now()
	defer func() {
		r.recordReconcileDuration(req.Name, time.Since(start).Seconds())
	}()

	hw := &helloworldv1alpha1.HelloWorld{}
	if err := r.Get(ctx, req.NamespacedName, hw); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, r.OnResourceDeleted(ctx, req.NamespacedName)
		}
		logger.Error(err, "unable to fetch HelloWorld")
		r.recordReconcile(req.Name, actionError)
		return ctrl.Result{}, err
	}

	if !hw.DeletionTimestamp.IsZero() {
		return ctrl.Result{}, r.OnResourceDeleted(ctx, req.NamespacedName)
	}

	result, err := r.OnResourceChanged(ctx, hw)
	if err != nil {
		r.recordReconcile(req.Name, actionError)
	}
	return result, err
}

// OnResourceChanged creates the StatefulSet when it is missing and otherwise
// moves its replica count towards spec.replicas.
func (r *HelloWorldReconciler) OnResourceChanged(ctx context.Context, hw *helloworldv1alpha1.HelloWorld) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("statefulset", hw.Spec.Name)
	ns := r.workloadNamespace(hw)

	sts, err := r.scaler.Get(ctx, ns, hw.Spec.Name)
	if apierrors.IsNotFound(err) {
		return ctrl.Result{}, r.createWorkload(ctx, hw, ns)
	}
	if err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to get statefulset %s/%s: %w", ns, hw.Spec.Name, err)
	}

	current := workload.Current(sts)
	next, direction := workload.NextReplicas(current, hw.Spec.Replicas)

	switch direction {
	case workload.DirectionNone:
		logger.V(1).Info("replicas match", "replicas", current)
		r.recordReconcile(hw.Name, actionUnchanged)
		return ctrl.Result{}, nil

	case workload.DirectionUp:
		logger.Info("scaling up", "current", current, "desired", hw.Spec.Replicas, "target", next)
		r.Recorder.Eventf(hw, corev1.EventTypeNormal, EventReasonScalingUp,
			"Scaling statefulset %s from %d to %d replicas", hw.Spec.Name, current, next)

	case workload.DirectionDown:
		logger.Info("scaling down", "current", current, "desired", hw.Spec.Replicas, "target", next)
		r.Recorder.Eventf(hw, corev1.EventTypeNormal, EventReasonScalingDown,
			"Scaling statefulset %s from %d to %d replicas", hw.Spec.Name, current, next)
	}

	if err := r.scaler.ScaleTo(ctx, sts, next); err != nil {
		r.Recorder.Eventf(hw, corev1.EventTypeWarning, EventReasonScaleError,
			"Failed to scale statefulset %s: %v", hw.Spec.Name, err)
		return ctrl.Result{}, err
	}

	if direction == workload.DirectionUp {
		r.recordReconcile(hw.Name, actionScaleUp)
	} else {
		r.recordReconcile(hw.Name, actionScaleDown)
	}
	return ctrl.Result{}, nil
}

// OnResourceDeleted leaves the StatefulSet in place.
func (r *HelloWorldReconciler) OnResourceDeleted(ctx context.Context, key types.NamespacedName) error {
	log.FromContext(ctx).Info("HelloWorld deleted, statefulset is left in place", "resource", key.String())
	r.recordReconcile(key.Name, actionDeleted)
	return nil
}

// createWorkload creates the StatefulSet with its initial replica. Losing a
// create race to another writer counts as success.
func (r *HelloWorldReconciler) createWorkload(ctx context.Context, hw *helloworldv1alpha1.HelloWorld, ns string) error {
	logger := log.FromContext(ctx)

	sts := workload.NewStatefulSet(ns, hw.Spec)
	if err := r.Create(ctx, sts); err != nil {
		if apierrors.IsAlreadyExists(err) {
			logger.Info("statefulset already exists", "statefulset", sts.Name)
			r.recordReconcile(hw.Name, actionUnchanged)
			return nil
		}
		return fmt.Errorf("failed to create statefulset %s/%s: %w", ns, sts.Name, err)
	}

	logger.Info("created statefulset", "statefulset", sts.Name, "namespace", ns, "image", hw.Spec.Image)
	r.Recorder.Eventf(hw, corev1.EventTypeNormal, EventReasonCreated,
		"Created statefulset %s with %d replica", sts.Name, workload.InitialReplicas)
	r.recordReconcile(hw.Name, actionCreated)
	return nil
}

func (r *HelloWorldReconciler) workloadNamespace(hw *helloworldv1alpha1.HelloWorld) string {
	if r.namespace != "" {
		return r.namespace
	}
	return hw.Namespace
}

// SetupWithManager sets up the controller with the Manager.
func (r *HelloWorldReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&helloworldv1alpha1.HelloWorld{}).
		Named("helloworld").
		Complete(r)
}
