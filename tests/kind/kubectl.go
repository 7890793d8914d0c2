//go:build kind

package kind

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

// run invokes kubectl against the test cluster, feeding stdin when set.
func (f *Framework) run(stdin io.Reader, args ...string) (string, error) {
	fullArgs := append([]string{"--kubeconfig", f.KubeconfigPath()}, args...)
	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.Command("kubectl", fullArgs...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("kubectl %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Kubectl executes a kubectl command and returns output.
func (f *Framework) Kubectl(args ...string) (string, error) {
	return f.run(nil, args...)
}

// KubectlMust executes kubectl and fails the test on error.
func (f *Framework) KubectlMust(t *testing.T, args ...string) string {
	t.Helper()
	output, err := f.run(nil, args...)
	if err != nil {
		t.Fatal(err)
	}
	return output
}

// KubectlApply applies a manifest string.
func (f *Framework) KubectlApply(t *testing.T, manifest string) {
	t.Helper()
	if _, err := f.run(strings.NewReader(manifest), "apply", "-f", "-"); err != nil {
		t.Fatal(err)
	}
}

// KubectlDelete deletes a resource without waiting for it to disappear.
func (f *Framework) KubectlDelete(namespace, kind, name string) error {
	_, err := f.run(nil, "-n", namespace, "delete", kind, name, "--ignore-not-found", "--wait=false")
	return err
}

// StatefulSetReplicas returns spec.replicas and status.readyReplicas.
func (f *Framework) StatefulSetReplicas(namespace, name string) (spec, ready string, err error) {
	output, err := f.run(nil, "-n", namespace, "get", "statefulset", name,
		"-o", "jsonpath={.spec.replicas} {.status.readyReplicas}")
	if err != nil {
		return "", "", err
	}
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", "", fmt.Errorf("statefulset %s/%s has no replica count", namespace, name)
	}
	spec = fields[0]
	if len(fields) > 1 {
		ready = fields[1]
	}
	return spec, ready, nil
}

// PodLogs returns the log of a pod's first container.
func (f *Framework) PodLogs(namespace, pod string) (string, error) {
	return f.run(nil, "-n", namespace, "logs", pod)
}

// ExecInPod runs a command in a pod container the same way a user would with
// kubectl exec, independent of the operator's own exec channel.
func (f *Framework) ExecInPod(namespace, pod, container string, command ...string) (string, error) {
	args := []string{"-n", namespace, "exec", pod}
	if container != "" {
		args = append(args, "-c", container)
	}
	args = append(args, "--")
	return f.run(nil, append(args, command...)...)
}

// InjectedData returns the contents of the payload file in a pod.
func (f *Framework) InjectedData(t *testing.T, namespace, pod string) string {
	t.Helper()
	output, err := f.ExecInPod(namespace, pod, "", "cat", workload.DataFile)
	if err != nil {
		t.Fatalf("read payload file of %s/%s: %v", namespace, pod, err)
	}
	return strings.TrimRight(output, "\n")
}
