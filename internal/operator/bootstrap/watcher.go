package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/keymutex"
	"sigs.k8s.io/controller-runtime/pkg/client"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/config"
	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

// Watcher bootstraps pods of one HelloWorld resource.
type Watcher struct {
	reader client.Reader
	logs   LogReader
	exec   CommandStarter
	scaler WorkloadScaler
	delay  Delay

	namespace      string
	resourceName   string
	stabilizeDelay time.Duration
	verifyDelay    time.Duration

	// locks serializes sequences per resource; nil when disabled
	locks keymutex.KeyMutex

	logger        logr.Logger
	enableMetrics bool
	newRunID      func() string
	onTransition  func(pod string, state State)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithNamespace sets the namespace of the resource, its StatefulSet and pods.
func WithNamespace(ns string) Option {
	return func(w *Watcher) {
		w.namespace = ns
	}
}

// WithResourceName sets the HelloWorld the watcher serves.
func WithResourceName(name string) Option {
	return func(w *Watcher) {
		w.resourceName = name
	}
}

// WithDelays sets the stabilization and verification delays.
func WithDelays(stabilize, verify time.Duration) Option {
	return func(w *Watcher) {
		w.stabilizeDelay = stabilize
		w.verifyDelay = verify
	}
}

// WithDelay replaces the Delay implementation.
func WithDelay(d Delay) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithSerialization runs at most one sequence per resource at a time.
func WithSerialization(enabled bool) Option {
	return func(w *Watcher) {
		if enabled {
			w.locks = keymutex.NewHashed(0)
		} else {
			w.locks = nil
		}
	}
}

// WithTransitionHook registers a function called on every state change.
func WithTransitionHook(fn func(pod string, state State)) Option {
	return func(w *Watcher) {
		w.onTransition = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enabled bool) Option {
	return func(w *Watcher) {
		w.enableMetrics = enabled
	}
}

// NewWatcher creates a Watcher. reader fetches the HelloWorld resource.
func NewWatcher(reader client.Reader, logs LogReader, exec CommandStarter, scaler WorkloadScaler, opts ...Option) *Watcher {
	w := &Watcher{
		reader:         reader,
		logs:           logs,
		exec:           exec,
		scaler:         scaler,
		delay:          NewClockDelay(),
		namespace:      config.DefaultNamespace,
		resourceName:   config.DefaultResourceName,
		stabilizeDelay: config.DefaultStabilizeDelay,
		verifyDelay:    config.DefaultVerifyDelay,
		logger:         logr.Discard(),
		enableMetrics:  true,
		newRunID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandlePodEvent is the pod event consumer. Only Added events for pods whose
// name contains the workload name start a sequence. Errors end the current
// event and are logged.
func (w *Watcher) HandlePodEvent(ctx context.Context, event watch.Event) {
	if event.Type != watch.Added {
		return
	}
	pod, ok := event.Object.(*corev1.Pod)
	if !ok {
		return
	}

	logger := w.logger.WithValues("pod", pod.Name)
	logger.V(1).Info("pod added")

	hw, err := w.resource(ctx)
	if err != nil {
		logger.Error(err, "failed to fetch HelloWorld")
		return
	}
	if hw.Spec.Name == "" || !strings.Contains(pod.Name, hw.Spec.Name) {
		logger.V(1).Info("pod does not belong to the workload", "workload", hw.Spec.Name)
		return
	}

	if _, err := w.Bootstrap(ctx, hw, pod.Name); err != nil {
		logger.Error(err, "bootstrap aborted")
	}
}

// Bootstrap runs the sequence for one pod and returns the state it ended in.
// Waits observe ctx; an interrupted wait is logged and the sequence goes on.
// API calls do not observe ctx cancellation.
func (w *Watcher) Bootstrap(ctx context.Context, hw *helloworldv1alpha1.HelloWorld, podName string) (State, error) {
	logger := w.logger.WithValues("resource", hw.Name, "pod", podName, "run", w.newRunID())
	apiCtx := context.WithoutCancel(ctx)

	if w.locks != nil {
		w.locks.LockKey(hw.Name)
		defer func() { _ = w.locks.UnlockKey(hw.Name) }()
	}

	state := w.transition(logger, podName, StateObserved)
	if _, err := w.scaler.Get(apiCtx, w.namespace, hw.Spec.Name); err != nil {
		return state, fmt.Errorf("failed to get statefulset %s: %w", hw.Spec.Name, err)
	}

	state = w.transition(logger, podName, StateStabilizing)
	logger.Info("waiting for pod to stabilize", "delay", w.stabilizeDelay)
	w.wait(ctx, logger, w.stabilizeDelay)

	marker := hw.Spec.Data
	found, err := w.markerPresent(apiCtx, podName, marker)
	if err != nil {
		return state, err
	}

	if found {
		logger.Info("payload already present in pod log")
		state = w.transition(logger, podName, StateAlreadyInjected)
	} else {
		target := podexec.Target{Namespace: w.namespace, Pod: podName, Container: hw.Spec.Name}
		logger.Info("injecting payload", "file", workload.DataFile)
		w.exec.Start(apiCtx, target, podexec.InjectCommand(marker), podexec.LogListener{Logger: logger})
		state = w.transition(logger, podName, StateInjected)
	}

	w.wait(ctx, logger, w.verifyDelay)

	found, err = w.markerPresent(apiCtx, podName, marker)
	if err != nil {
		return state, err
	}
	if !found {
		logger.Info("payload not found in pod log", "previous", state)
		w.recordState(hw.Name, StateUnverified)
		return w.transition(logger, podName, StateUnverified), nil
	}

	logger.Info("payload verified")
	w.recordState(hw.Name, StateVerified)
	state = w.transition(logger, podName, StateVerified)
	w.scaleOut(apiCtx, logger, hw)
	return state, nil
}

func (w *Watcher) transition(logger logr.Logger, pod string, state State) State {
	logger.V(1).Info("bootstrap state", "state", state)
	if w.onTransition != nil {
		w.onTransition(pod, state)
	}
	return state
}

// scaleOut adds one replica when the workload is below the desired count.
// The StatefulSet and the HelloWorld are read again so that replicas added
// and desired counts changed since the sequence started are taken into
// account. Failures are logged only.
func (w *Watcher) scaleOut(ctx context.Context, logger logr.Logger, hw *helloworldv1alpha1.HelloWorld) {
	latest := &helloworldv1alpha1.HelloWorld{}
	if err := w.reader.Get(ctx, client.ObjectKeyFromObject(hw), latest); err != nil {
		logger.Error(err, "failed to get HelloWorld for scale-out")
		w.recordScale(hw.Name, scaleResultFailed)
		return
	}

	sts, err := w.scaler.Get(ctx, w.namespace, latest.Spec.Name)
	if err != nil {
		logger.Error(err, "failed to get statefulset for scale-out")
		w.recordScale(hw.Name, scaleResultFailed)
		return
	}

	current := workload.Current(sts)
	desired := latest.Spec.Replicas
	if desired <= current {
		logger.Info("statefulset at desired size", "current", current, "desired", desired)
		w.recordScale(hw.Name, scaleResultSkipped)
		return
	}

	target := current + 1
	logger.Info("scaling statefulset", "current", current, "desired", desired, "target", target)
	if err := w.scaler.ScaleTo(ctx, sts, target); err != nil {
		logger.Error(err, "failed to scale statefulset")
		w.recordScale(hw.Name, scaleResultFailed)
		return
	}
	w.recordScale(hw.Name, scaleResultScaled)
}

func (w *Watcher) resource(ctx context.Context) (*helloworldv1alpha1.HelloWorld, error) {
	hw := &helloworldv1alpha1.HelloWorld{}
	key := types.NamespacedName{Namespace: w.namespace, Name: w.resourceName}
	if err := w.reader.Get(context.WithoutCancel(ctx), key, hw); err != nil {
		return nil, fmt.Errorf("failed to get HelloWorld %s: %w", key, err)
	}
	return hw, nil
}

func (w *Watcher) markerPresent(ctx context.Context, podName, marker string) (bool, error) {
	logs, err := w.logs.PodLogs(ctx, w.namespace, podName)
	if err != nil {
		return false, fmt.Errorf("failed to read logs of pod %s: %w", podName, err)
	}
	return workload.PayloadPresent(logs, marker), nil
}

func (w *Watcher) wait(ctx context.Context, logger logr.Logger, d time.Duration) {
	if err := w.delay.Wait(ctx, d); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("wait interrupted, continuing", "reason", err.Error())
			return
		}
		logger.Error(err, "wait failed, continuing")
	}
}
