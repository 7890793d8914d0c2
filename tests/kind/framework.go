//go:build kind

// Package kind runs the operator against a local Kubernetes cluster.
// Uses kind (Kubernetes in Docker) so that pods really start, print their
// logs and accept exec sessions.
package kind

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const clusterName = "helloworld-test"

// Framework owns the kind cluster and the kubeconfig the suite talks to.
type Framework struct {
	mu             sync.RWMutex
	kubeconfigPath string
	// created is set when Setup made the cluster; reused clusters survive Teardown.
	created bool
}

// NewFramework creates a test framework instance.
func NewFramework() *Framework {
	return &Framework{}
}

// Setup reuses the helloworld-test cluster when it exists and creates it
// otherwise.
func (f *Framework) Setup() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkPrerequisites(); err != nil {
		return err
	}

	if f.clusterExists() {
		fmt.Printf("Reusing kind cluster %s\n", clusterName)
	} else {
		fmt.Printf("Creating kind cluster %s\n", clusterName)
		if err := f.createCluster(); err != nil {
			return fmt.Errorf("create cluster: %w", err)
		}
		f.created = true
	}
	return f.loadKubeconfig()
}

// Teardown removes the kubeconfig and deletes a cluster created by Setup,
// unless KEEP_KIND_CLUSTER is set.
func (f *Framework) Teardown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	keep := os.Getenv("KEEP_KIND_CLUSTER") != ""
	if keep || !f.created {
		fmt.Printf("Leaving kind cluster %s in place (delete with: kind delete cluster --name %s)\n", clusterName, clusterName)
	}
	if keep {
		fmt.Printf("  kubeconfig: %s\n", f.kubeconfigPath)
		return
	}

	if f.kubeconfigPath != "" {
		_ = os.RemoveAll(filepath.Dir(f.kubeconfigPath))
	}
	if !f.created {
		return
	}

	fmt.Printf("Deleting kind cluster %s\n", clusterName)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_ = exec.CommandContext(ctx, "kind", "delete", "cluster", "--name", clusterName).Run()
}

// prerequisites lists the tools the suite shells out to.
var prerequisites = []struct {
	name  string
	check func() error
	hint  string
}{
	{"kind", lookPath("kind"), "install with 'go install sigs.k8s.io/kind@latest'"},
	{"kubectl", lookPath("kubectl"), "install kubectl matching the cluster version"},
	{"docker", func() error { return exec.Command("docker", "info").Run() }, "start the docker daemon"},
}

func lookPath(name string) func() error {
	return func() error {
		_, err := exec.LookPath(name)
		return err
	}
}

func (f *Framework) checkPrerequisites() error {
	for _, p := range prerequisites {
		if err := p.check(); err != nil {
			return fmt.Errorf("%s unavailable (%s): %w", p.name, p.hint, err)
		}
	}
	return nil
}

func (f *Framework) clusterExists() bool {
	output, err := exec.Command("kind", "get", "clusters").Output()
	if err != nil {
		return false
	}
	for _, name := range strings.Fields(string(output)) {
		if name == clusterName {
			return true
		}
	}
	return false
}

// clusterConfig renders the kind cluster config. KIND_WORKERS adds worker
// nodes; by default the control plane runs the workload pods.
func clusterConfig() string {
	workers := 0
	if n, err := strconv.Atoi(os.Getenv("KIND_WORKERS")); err == nil && n > 0 {
		workers = n
	}

	var b strings.Builder
	b.WriteString("kind: Cluster\napiVersion: kind.x-k8s.io/v1alpha4\nnodes:\n- role: control-plane\n")
	b.WriteString(strings.Repeat("- role: worker\n", workers))
	return b.String()
}

func (f *Framework) createCluster() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// #nosec G204 -- test code with controlled command arguments
	cmd := exec.CommandContext(ctx, "kind", "create", "cluster",
		"--name", clusterName,
		"--config", "-",
		"--wait", "120s",
	)
	cmd.Stdin = strings.NewReader(clusterConfig())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// loadKubeconfig writes the cluster's kubeconfig to a private temp file so
// the suite never touches the user's default context.
func (f *Framework) loadKubeconfig() error {
	dir, err := os.MkdirTemp("", "kind-"+clusterName+"-")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "kubeconfig")

	// #nosec G204 -- test code with controlled command arguments
	if output, err := exec.Command("kind", "export", "kubeconfig", "--name", clusterName, "--kubeconfig", path).CombinedOutput(); err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("export kubeconfig: %w: %s", err, strings.TrimSpace(string(output)))
	}
	f.kubeconfigPath = path
	return nil
}

// KubeconfigPath returns the path to the kubeconfig file.
func (f *Framework) KubeconfigPath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.kubeconfigPath
}
