package podexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/httpstream"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

// Target identifies the container a command runs in. An empty Container
// selects the pod's default container.
type Target struct {
	Namespace string
	Pod       string
	Container string
}

func (t Target) String() string {
	return t.Namespace + "/" + t.Pod
}

// ExecutorFactory opens the transport for one exec session.
type ExecutorFactory func(target Target, command []string, tty bool) (remotecommand.Executor, error)

// InjectCommand returns the argv that writes data into the workload data file:
// sh -c 'echo "<data>" > /tmp/data.txt'. Characters that sh expands inside
// double quotes are escaped, so echo receives data unchanged. Shells whose
// echo interprets backslash sequences (dash) still rewrite payloads such as
// `a\tb`; those payloads never verify.
func InjectCommand(data string) []string {
	return []string{"sh", "-c", `echo "` + escapeDoubleQuoted(data) + `" > ` + workload.DataFile}
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

func escapeDoubleQuoted(s string) string {
	return doubleQuoteEscaper.Replace(s)
}

// Channel starts exec sessions against pods.
type Channel struct {
	newExecutor   ExecutorFactory
	tty           bool
	logger        logr.Logger
	enableMetrics bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithExecutorFactory replaces the transport, e.g. in tests.
func WithExecutorFactory(f ExecutorFactory) Option {
	return func(c *Channel) {
		c.newExecutor = f
	}
}

// WithTTY toggles interactive mode. With a TTY, stderr is merged into stdout.
func WithTTY(tty bool) Option {
	return func(c *Channel) {
		c.tty = tty
	}
}

// WithLogger sets the logger used for remote output.
func WithLogger(l logr.Logger) Option {
	return func(c *Channel) {
		c.logger = l
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enabled bool) Option {
	return func(c *Channel) {
		c.enableMetrics = enabled
	}
}

// NewChannel creates a Channel that talks to the API server described by
// config. The websocket transport is tried first with a fallback to SPDY.
func NewChannel(config *rest.Config, clientset kubernetes.Interface, opts ...Option) *Channel {
	c := &Channel{
		newExecutor:   apiServerExecutor(config, clientset),
		tty:           true,
		logger:        logr.Discard(),
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func apiServerExecutor(config *rest.Config, clientset kubernetes.Interface) ExecutorFactory {
	return func(target Target, command []string, tty bool) (remotecommand.Executor, error) {
		req := clientset.CoreV1().RESTClient().Post().
			Resource("pods").
			Namespace(target.Namespace).
			Name(target.Pod).
			SubResource("exec").
			VersionedParams(&corev1.PodExecOptions{
				Container: target.Container,
				Command:   command,
				Stdin:     true,
				Stdout:    true,
				Stderr:    !tty,
				TTY:       tty,
			}, scheme.ParameterCodec)

		spdyExec, err := remotecommand.NewSPDYExecutor(config, "POST", req.URL())
		if err != nil {
			return nil, fmt.Errorf("failed to create spdy executor: %w", err)
		}
		wsExec, err := remotecommand.NewWebSocketExecutor(config, "GET", req.URL().String())
		if err != nil {
			return nil, fmt.Errorf("failed to create websocket executor: %w", err)
		}
		return remotecommand.NewFallbackExecutor(wsExec, spdyExec, func(err error) bool {
			return httpstream.IsUpgradeFailure(err) || httpstream.IsHTTPSProxyError(err)
		})
	}
}

// Start opens a session and runs command in it. It returns immediately; the
// returned channel is closed after the listener saw OnFailure or OnClose.
func (c *Channel) Start(ctx context.Context, target Target, command []string, listener Listener) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.run(ctx, target, command, listener)
	}()
	return done
}

// Run is the blocking form of Start.
func (c *Channel) Run(ctx context.Context, target Target, command []string, listener Listener) {
	c.run(ctx, target, command, listener)
}

func (c *Channel) run(ctx context.Context, target Target, command []string, listener Listener) {
	logger := c.logger.WithValues("pod", target.String())

	executor, err := c.newExecutor(target, command, c.tty)
	if err != nil {
		c.recordSession(sessionResultFailed)
		listener.OnFailure(fmt.Errorf("failed to open exec session on %s: %w", target, err))
		return
	}

	var opened sync.Once
	markOpen := func() { opened.Do(listener.OnOpen) }

	stdout := newLineWriter(logger, "stdout")
	stderr := newLineWriter(logger, "stderr")
	streamOpts := remotecommand.StreamOptions{
		Stdin:  &openSignal{onFirstRead: markOpen},
		Stdout: stdout,
		Tty:    c.tty,
	}
	if !c.tty {
		streamOpts.Stderr = stderr
	}

	err = executor.StreamWithContext(ctx, streamOpts)
	stdout.Flush()
	stderr.Flush()

	var exitErr utilexec.ExitError
	switch {
	case err == nil:
		markOpen()
		c.recordSession(sessionResultClosed)
		listener.OnClose(0, "command completed")
	case errors.As(err, &exitErr) && exitErr.Exited():
		markOpen()
		c.recordSession(sessionResultNonZero)
		listener.OnClose(exitErr.ExitStatus(), exitErr.Error())
	default:
		c.recordSession(sessionResultFailed)
		listener.OnFailure(fmt.Errorf("exec session on %s failed: %w", target, err))
	}
}

// openSignal is the session's stdin. The stream protocol starts copying stdin
// only after all streams are established, so the first read marks the
// session as open. It carries no input.
type openSignal struct {
	onFirstRead func()
}

func (s *openSignal) Read(_ []byte) (int, error) {
	s.onFirstRead()
	return 0, io.EOF
}
