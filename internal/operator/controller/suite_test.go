//go:build integration

// Package controller contains integration tests using envtest.
//
// Envtest runs a real kube-apiserver and etcd but no controllers, so
// StatefulSets never report observed replicas. The tests drive status by hand
// where a scenario needs it.
//
// Run these tests with:
//
//	KUBEBUILDER_ASSETS="$(setup-envtest use -p path)" go test -v -tags=integration ./internal/operator/controller/...
package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
)

// Test configuration
var (
	cfg       *rest.Config
	k8sClient client.Client
	testEnv   *envtest.Environment
	ctx       context.Context
	cancel    context.CancelFunc
)

// TestControllerIntegration is the entry point for Ginkgo tests.
func TestControllerIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Integration Suite")
}

var _ = BeforeSuite(func() {
	logf.SetLogger(zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))

	ctx, cancel = context.WithCancel(context.Background())

	By("bootstrapping test environment with real kube-apiserver and etcd")
	testEnv = &envtest.Environment{
		CRDDirectoryPaths:     []string{filepath.Join("..", "..", "..", "config", "crd", "bases")},
		ErrorIfCRDPathMissing: true,
	}

	var err error
	cfg, err = testEnv.Start()
	Expect(err).NotTo(HaveOccurred())
	Expect(cfg).NotTo(BeNil())

	k8sClient, err = client.New(cfg, client.Options{Scheme: helloworldv1alpha1.Scheme})
	Expect(err).NotTo(HaveOccurred())
	Expect(k8sClient).NotTo(BeNil())

	k8sManager, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme:  helloworldv1alpha1.Scheme,
		Metrics: metricsserver.Options{BindAddress: "0"},
	})
	Expect(err).NotTo(HaveOccurred())

	err = NewHelloWorldReconciler(
		k8sManager.GetClient(),
		k8sManager.GetScheme(),
		k8sManager.GetEventRecorderFor("helloworld-controller"),
		WithMetrics(false),
	).SetupWithManager(k8sManager)
	Expect(err).NotTo(HaveOccurred())

	go func() {
		defer GinkgoRecover()
		err = k8sManager.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
	}()

	By("waiting for manager cache to sync")
	Eventually(func() bool {
		return k8sManager.GetCache().WaitForCacheSync(ctx)
	}, time.Second*30, time.Millisecond*500).Should(BeTrue(), "timed out waiting for cache sync")
})

var _ = AfterSuite(func() {
	cancel()
	By("tearing down the test environment")
	err := testEnv.Stop()
	Expect(err).NotTo(HaveOccurred())
})

var _ = Describe("HelloWorld Controller", func() {
	const (
		timeout  = time.Second * 30
		interval = time.Millisecond * 500
	)

	var (
		resourceName string
		workloadName string
		namespace    string
	)

	BeforeEach(func() {
		resourceName = fmt.Sprintf("hello-%d", GinkgoRandomSeed())
		workloadName = fmt.Sprintf("web-%d-%d", GinkgoRandomSeed(), GinkgoParallelProcess())
		namespace = "default"
	})

	AfterEach(func() {
		hw := &helloworldv1alpha1.HelloWorld{}
		if err := k8sClient.Get(ctx, types.NamespacedName{Name: resourceName, Namespace: namespace}, hw); err == nil {
			_ = k8sClient.Delete(ctx, hw)
		}
		sts := &appsv1.StatefulSet{}
		if err := k8sClient.Get(ctx, types.NamespacedName{Name: workloadName, Namespace: namespace}, sts); err == nil {
			_ = k8sClient.Delete(ctx, sts)
		}
		Eventually(func() bool {
			err := k8sClient.Get(ctx, types.NamespacedName{Name: workloadName, Namespace: namespace}, &appsv1.StatefulSet{})
			return errors.IsNotFound(err)
		}, timeout, interval).Should(BeTrue())
	})

	createHelloWorld := func(replicas int32) *helloworldv1alpha1.HelloWorld {
		hw := &helloworldv1alpha1.HelloWorld{
			ObjectMeta: metav1.ObjectMeta{Name: resourceName, Namespace: namespace},
			Spec: helloworldv1alpha1.HelloWorldSpec{
				Name:     workloadName,
				Image:    "nginx",
				Data:     "hi",
				Replicas: replicas,
			},
		}
		Expect(k8sClient.Create(ctx, hw)).Should(Succeed())
		return hw
	}

	specReplicas := func() int32 {
		sts := &appsv1.StatefulSet{}
		if err := k8sClient.Get(ctx, types.NamespacedName{Name: workloadName, Namespace: namespace}, sts); err != nil {
			return -1
		}
		if sts.Spec.Replicas == nil {
			return -1
		}
		return *sts.Spec.Replicas
	}

	Context("Workload Creation", func() {
		It("should create a StatefulSet with one replica", func() {
			By("Creating a HelloWorld with 3 replicas")
			createHelloWorld(3)

			By("Verifying the StatefulSet is created with a single replica")
			Eventually(specReplicas, timeout, interval).Should(Equal(int32(1)))

			sts := &appsv1.StatefulSet{}
			Expect(k8sClient.Get(ctx, types.NamespacedName{Name: workloadName, Namespace: namespace}, sts)).To(Succeed())
			Expect(sts.Spec.Template.Spec.Containers).To(HaveLen(1))
			Expect(sts.Spec.Template.Spec.Containers[0].Image).To(Equal("nginx"))
			Expect(sts.Spec.Selector.MatchLabels).To(HaveKeyWithValue("app", workloadName))
		})
	})

	Context("Scaling", func() {
		It("should scale down straight to the desired count", func() {
			By("Creating a HelloWorld with 1 replica")
			hw := createHelloWorld(1)
			Eventually(specReplicas, timeout, interval).Should(Equal(int32(1)))

			By("Reporting 3 observed replicas on the StatefulSet")
			Eventually(func() error {
				sts := &appsv1.StatefulSet{}
				if err := k8sClient.Get(ctx, types.NamespacedName{Name: workloadName, Namespace: namespace}, sts); err != nil {
					return err
				}
				sts.Status.Replicas = 3
				return k8sClient.Status().Update(ctx, sts)
			}, timeout, interval).Should(Succeed())

			By("Lowering the desired count to 0")
			Eventually(func() error {
				latest := &helloworldv1alpha1.HelloWorld{}
				if err := k8sClient.Get(ctx, client.ObjectKeyFromObject(hw), latest); err != nil {
					return err
				}
				latest.Spec.Replicas = 0
				return k8sClient.Update(ctx, latest)
			}, timeout, interval).Should(Succeed())

			Eventually(specReplicas, timeout, interval).Should(Equal(int32(0)))
		})
	})

	Context("Resource Deletion", func() {
		It("should leave the StatefulSet in place", func() {
			hw := createHelloWorld(1)
			Eventually(specReplicas, timeout, interval).Should(Equal(int32(1)))

			By("Deleting the HelloWorld")
			Expect(k8sClient.Delete(ctx, hw)).Should(Succeed())
			Eventually(func() bool {
				err := k8sClient.Get(ctx, client.ObjectKeyFromObject(hw), &helloworldv1alpha1.HelloWorld{})
				return errors.IsNotFound(err)
			}, timeout, interval).Should(BeTrue())

			By("Verifying the StatefulSet still exists")
			Consistently(specReplicas, time.Second*3, interval).Should(Equal(int32(1)))
		})
	})
})
