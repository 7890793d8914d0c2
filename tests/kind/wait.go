//go:build kind

package kind

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
)

// WaitForCondition polls until condition returns true or timeout is reached.
func (f *Framework) WaitForCondition(t *testing.T, desc string, timeout time.Duration, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("timeout waiting for %s", desc)
}

// WaitForCRD waits for a CRD to be established.
func (f *Framework) WaitForCRD(t *testing.T, name string, timeout time.Duration) {
	t.Helper()

	f.WaitForCondition(t, fmt.Sprintf("CRD %s", name), timeout, func() bool {
		output, err := f.Kubectl("get", "crd", name,
			"-o", "jsonpath={.status.conditions[?(@.type=='Established')].status}")
		return err == nil && output == "True"
	})
}

// WaitForStatefulSetReplicas waits until the StatefulSet reports n ready replicas.
func (f *Framework) WaitForStatefulSetReplicas(t *testing.T, namespace, name string, n int, timeout time.Duration) {
	t.Helper()
	t.Logf("Waiting for statefulset %s/%s to reach %d replicas...", namespace, name, n)

	want := strconv.Itoa(n)
	f.WaitForCondition(t, fmt.Sprintf("statefulset %s/%s at %d/%d", namespace, name, n, n), timeout, func() bool {
		spec, ready, err := f.StatefulSetReplicas(namespace, name)
		if err != nil || spec != want || ready != want {
			return false
		}
		t.Logf("  ✓ %s/%s ready (%s/%s)", namespace, name, ready, spec)
		return true
	})
}

// WaitForDesiredReplicas waits until the StatefulSet asks for n replicas,
// regardless of how many are ready.
func (f *Framework) WaitForDesiredReplicas(t *testing.T, namespace, name string, n int, timeout time.Duration) {
	t.Helper()

	want := strconv.Itoa(n)
	f.WaitForCondition(t, fmt.Sprintf("statefulset %s/%s asking for %d", namespace, name, n), timeout, func() bool {
		spec, _, err := f.StatefulSetReplicas(namespace, name)
		return err == nil && spec == want
	})
}

// WaitForLogLine waits until the pod log contains line.
func (f *Framework) WaitForLogLine(t *testing.T, namespace, pod, line string, timeout time.Duration) {
	t.Helper()

	f.WaitForCondition(t, fmt.Sprintf("%q in log of %s/%s", line, namespace, pod), timeout, func() bool {
		output, err := f.PodLogs(namespace, pod)
		return err == nil && strings.Contains(output, line)
	})
}
