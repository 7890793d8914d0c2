package handlers

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
)

// captureOutput captures stdout during function execution.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// saveAndRestoreFactories restores factory functions and global flags after
// the test.
func saveAndRestoreFactories(t *testing.T) {
	origResourceClient := newResourceClient
	origPodReader := newPodReader
	origExecRunner := newExecRunner
	origFileExists := fileExists
	origRunWizard := runWizard
	origWriteManifest := writeManifest
	origTTY := isInteractiveTTY
	origStatusProgram := runStatusProgram
	origKubeconfig := Kubeconfig
	origNamespace := Namespace

	t.Cleanup(func() {
		newResourceClient = origResourceClient
		newPodReader = origPodReader
		newExecRunner = origExecRunner
		fileExists = origFileExists
		runWizard = origRunWizard
		writeManifest = origWriteManifest
		isInteractiveTTY = origTTY
		runStatusProgram = origStatusProgram
		Kubeconfig = origKubeconfig
		Namespace = origNamespace
	})
}

func useFakeClient(t *testing.T, objs ...client.Object) client.Client {
	t.Helper()
	c := fake.NewClientBuilder().WithScheme(helloworldv1alpha1.Scheme).WithObjects(objs...).Build()
	newResourceClient = func(string) (client.Client, error) { return c, nil }
	return c
}

func testHelloWorld() *helloworldv1alpha1.HelloWorld {
	return &helloworldv1alpha1.HelloWorld{
		ObjectMeta: metav1.ObjectMeta{Name: "hello-world-example", Namespace: "default"},
		Spec: helloworldv1alpha1.HelloWorldSpec{
			Name:     "web",
			Image:    "nginx",
			Data:     "Example of injected data",
			Replicas: 2,
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := t.TempDir() + "/" + name
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// mockPodReader is a podReader backed by maps.
type mockPodReader struct {
	pods    []corev1.Pod
	logs    map[string]string
	logErr  error
	listErr error

	selectors []string
}

func (m *mockPodReader) GetPods(_ context.Context, _ string, selector string) ([]corev1.Pod, error) {
	m.selectors = append(m.selectors, selector)
	return m.pods, m.listErr
}

func (m *mockPodReader) PodLogs(_ context.Context, _ string, name string) (string, error) {
	if m.logErr != nil {
		return "", m.logErr
	}
	return m.logs[name], nil
}

// mockExecRunner records Run calls and replays a fixed outcome.
type mockExecRunner struct {
	mu sync.Mutex

	waitErr    error
	failure    error
	exitCode   int
	exitReason string

	targets  []podexec.Target
	commands [][]string
}

func (m *mockExecRunner) WaitForPodRunning(_ context.Context, _, _ string, _ time.Duration) error {
	return m.waitErr
}

func (m *mockExecRunner) Run(_ context.Context, target podexec.Target, command []string, listener podexec.Listener) {
	m.mu.Lock()
	m.targets = append(m.targets, target)
	m.commands = append(m.commands, command)
	m.mu.Unlock()

	if m.failure != nil {
		listener.OnFailure(m.failure)
		return
	}
	listener.OnOpen()
	listener.OnClose(m.exitCode, m.exitReason)
}
