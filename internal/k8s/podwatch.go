package k8s

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/clock"
)

const defaultWatchRetryDelay = 5 * time.Second

// PodEventHandler consumes one pod lifecycle event.
type PodEventHandler func(ctx context.Context, event watch.Event)

// PodWatch streams pod events of one namespace into a handler. It re-opens the
// watch when the server closes it and resumes from the last seen resource
// version. The first watch starts without a resource version, so pods that
// already exist are delivered as Added events.
//
// PodWatch implements manager.Runnable.
type PodWatch struct {
	clientset  kubernetes.Interface
	namespace  string
	handler    PodEventHandler
	retryDelay time.Duration
	workers    int
	clock      clock.Clock
	logger     logr.Logger
}

// PodWatchOption configures a PodWatch.
type PodWatchOption func(*PodWatch)

// WithRetryDelay sets the pause after a failed watch.
func WithRetryDelay(d time.Duration) PodWatchOption {
	return func(w *PodWatch) {
		w.retryDelay = d
	}
}

// WithWorkers sets how many events are handled concurrently. With one worker
// (the default) events are handled strictly in delivery order.
func WithWorkers(n int) PodWatchOption {
	return func(w *PodWatch) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithClock replaces the clock used for retry delays.
func WithClock(c clock.Clock) PodWatchOption {
	return func(w *PodWatch) {
		w.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) PodWatchOption {
	return func(w *PodWatch) {
		w.logger = l
	}
}

// NewPodWatch creates a pod watch on the client's clientset.
func (c *Client) NewPodWatch(namespace string, handler PodEventHandler, opts ...PodWatchOption) *PodWatch {
	w := &PodWatch{
		clientset:  c.clientset,
		namespace:  namespace,
		handler:    handler,
		retryDelay: defaultWatchRetryDelay,
		workers:    1,
		clock:      clock.RealClock{},
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithValues("namespace", namespace)
	return w
}

// NeedLeaderElection makes the manager run the watch on the leader only.
func (w *PodWatch) NeedLeaderElection() bool {
	return true
}

// Start runs the watch until ctx is cancelled. In-flight handlers are allowed
// to finish before Start returns.
func (w *PodWatch) Start(ctx context.Context) error {
	events := make(chan watch.Event)
	var wg sync.WaitGroup
	for range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range events {
				w.dispatch(ctx, ev)
			}
		}()
	}
	defer func() {
		close(events)
		wg.Wait()
	}()

	w.logger.Info("starting pod watch", "workers", w.workers)

	resourceVersion := ""
	for {
		rv, err := w.watchOnce(ctx, resourceVersion, events)
		if ctx.Err() != nil {
			w.logger.Info("pod watch stopped")
			return nil
		}
		resourceVersion = rv
		if err == nil {
			w.logger.V(1).Info("pod watch closed by server, reopening", "resourceVersion", resourceVersion)
			continue
		}

		if apierrors.IsResourceExpired(err) || apierrors.IsGone(err) {
			w.logger.Info("resource version too old, restarting pod watch from scratch", "resourceVersion", resourceVersion)
			resourceVersion = ""
		} else {
			w.logger.Error(err, "pod watch failed", "retryAfter", w.retryDelay)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("pod watch stopped")
			return nil
		case <-w.clock.After(w.retryDelay):
		}
	}
}

// watchOnce consumes a single watch stream. It returns the last seen resource
// version and a non-nil error when the stream failed.
func (w *PodWatch) watchOnce(ctx context.Context, resourceVersion string, out chan<- watch.Event) (string, error) {
	wi, err := w.clientset.CoreV1().Pods(w.namespace).Watch(ctx, metav1.ListOptions{
		ResourceVersion:     resourceVersion,
		AllowWatchBookmarks: true,
	})
	if err != nil {
		return resourceVersion, fmt.Errorf("failed to watch pods in %s: %w", w.namespace, err)
	}
	defer wi.Stop()

	for {
		select {
		case <-ctx.Done():
			return resourceVersion, nil
		case ev, ok := <-wi.ResultChan():
			if !ok {
				return resourceVersion, nil
			}

			if ev.Type == watch.Error {
				return resourceVersion, apierrors.FromObject(ev.Object)
			}

			pod, ok := ev.Object.(*corev1.Pod)
			if !ok {
				continue
			}
			if pod.ResourceVersion != "" {
				resourceVersion = pod.ResourceVersion
			}
			if ev.Type == watch.Bookmark {
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return resourceVersion, nil
			}
		}
	}
}

// dispatch isolates handler failures to the event that caused them.
func (w *PodWatch) dispatch(ctx context.Context, ev watch.Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(fmt.Errorf("%v", r), "pod event handler panicked", "type", ev.Type)
		}
	}()
	w.handler(ctx, ev)
}
