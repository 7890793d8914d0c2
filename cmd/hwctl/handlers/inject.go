package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
)

// podReadyTimeout bounds the wait for the pod before injecting.
const podReadyTimeout = 2 * time.Minute

// Inject writes the payload of a HelloWorld into one pod and waits for the
// exec session to end.
func Inject(ctx context.Context, name, pod string) error {
	c, err := newResourceClient(Kubeconfig)
	if err != nil {
		return err
	}
	hw, err := getHelloWorld(ctx, c, name)
	if err != nil {
		return err
	}

	runner, err := newExecRunner(Kubeconfig)
	if err != nil {
		return err
	}

	fmt.Printf("Waiting for pod %s to run...\n", pod)
	if err := runner.WaitForPodRunning(ctx, hw.Namespace, pod, podReadyTimeout); err != nil {
		return fmt.Errorf("pod %s/%s is not running: %w", hw.Namespace, pod, err)
	}

	target := podexec.Target{Namespace: hw.Namespace, Pod: pod, Container: hw.Spec.Name}
	listener := &cliListener{}
	runner.Run(ctx, target, podexec.InjectCommand(hw.Spec.Data), listener)

	if listener.err != nil {
		return fmt.Errorf("failed to inject payload into %s: %w", target, listener.err)
	}
	if listener.code != 0 {
		return fmt.Errorf("injection command in %s exited with code %d: %s", target, listener.code, listener.reason)
	}
	fmt.Printf("Payload written to pod %s\n", pod)
	return nil
}

// cliListener records the session outcome for the caller.
type cliListener struct {
	err    error
	code   int
	reason string
}

func (l *cliListener) OnOpen() {
	fmt.Println("Exec session opened")
}

func (l *cliListener) OnFailure(err error) {
	l.err = err
}

func (l *cliListener) OnClose(code int, reason string) {
	l.code = code
	l.reason = reason
}
