// Package main is the entrypoint for the helloworld-operator.
package main

import (
	"flag"
	"os"
	"time"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	helloworldv1alpha1 "github.com/ihor-mutel/helloworld-operator/api/v1alpha1"
	"github.com/ihor-mutel/helloworld-operator/internal/config"
	"github.com/ihor-mutel/helloworld-operator/internal/k8s"
	"github.com/ihor-mutel/helloworld-operator/internal/operator/bootstrap"
	"github.com/ihor-mutel/helloworld-operator/internal/operator/controller"
	"github.com/ihor-mutel/helloworld-operator/internal/podexec"
	"github.com/ihor-mutel/helloworld-operator/internal/workload"
)

var (
	setupLog = ctrl.Log.WithName("setup")

	// Version is set at build time
	Version = "dev"
)

func main() {
	var (
		metricsAddr          string
		probeAddr            string
		enableLeaderElection bool
		leaderElectionID     string
		configPath           string
		enableMetrics        bool
	)

	// Operator settings; only flags given on the command line override the
	// environment and the config file.
	var (
		namespace          string
		resourceName       string
		stabilizeDelay     time.Duration
		verifyDelay        time.Duration
		watchRetryDelay    time.Duration
		bootstrapWorkers   int
		serializeBootstrap bool
	)

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	flag.StringVar(&leaderElectionID, "leader-election-id", "helloworld-operator", "The name of the leader election resource.")
	flag.StringVar(&configPath, "config", "", "Optional YAML file with operator settings.")
	flag.BoolVar(&enableMetrics, "enable-metrics", true, "Record Prometheus metrics.")

	flag.StringVar(&namespace, "namespace", config.DefaultNamespace, "Namespace of the HelloWorld resource and its workload.")
	flag.StringVar(&resourceName, "resource-name", config.DefaultResourceName, "HelloWorld resource served by the bootstrap watcher.")
	flag.DurationVar(&stabilizeDelay, "stabilize-delay", config.DefaultStabilizeDelay, "Wait after a pod was added before reading its log.")
	flag.DurationVar(&verifyDelay, "verify-delay", config.DefaultVerifyDelay, "Wait between injecting and verifying the payload.")
	flag.DurationVar(&watchRetryDelay, "watch-retry-delay", config.DefaultWatchRetryDelay, "Pause before re-opening a failed pod watch.")
	flag.IntVar(&bootstrapWorkers, "bootstrap-workers", config.DefaultBootstrapWorkers, "Number of pod events handled concurrently.")
	flag.BoolVar(&serializeBootstrap, "serialize-bootstrap", false, "Run one bootstrap sequence per resource at a time.")

	opts := zap.Options{
		Development: os.Getenv("DEBUG") == "true",
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	setupLog.Info("starting helloworld-operator", "version", Version)

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "namespace":
			cfg.Namespace = namespace
		case "resource-name":
			cfg.ResourceName = resourceName
		case "stabilize-delay":
			cfg.StabilizeDelay = stabilizeDelay
		case "verify-delay":
			cfg.VerifyDelay = verifyDelay
		case "watch-retry-delay":
			cfg.WatchRetryDelay = watchRetryDelay
		case "bootstrap-workers":
			cfg.BootstrapWorkers = bootstrapWorkers
		case "serialize-bootstrap":
			cfg.SerializeBootstrap = serializeBootstrap
		}
	})
	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}
	setupLog.Info("configuration loaded",
		"namespace", cfg.Namespace,
		"resource", cfg.ResourceName,
		"stabilizeDelay", cfg.StabilizeDelay,
		"verifyDelay", cfg.VerifyDelay,
		"bootstrapWorkers", cfg.BootstrapWorkers,
		"serializeBootstrap", cfg.SerializeBootstrap,
	)

	restConfig := ctrl.GetConfigOrDie()

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: helloworldv1alpha1.Scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{cfg.Namespace: {}},
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       leaderElectionID,
		// LeaderElectionReleaseOnCancel defines if the leader should step down voluntarily
		// when the Manager ends. This requires the binary to immediately end when the
		// Manager is stopped, otherwise, this setting is unsafe.
		LeaderElectionReleaseOnCancel: true,
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	// Create the HelloWorld reconciler
	if err = controller.NewHelloWorldReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor("helloworld-controller"),
		controller.WithNamespace(cfg.Namespace),
		controller.WithMetrics(enableMetrics),
	).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "HelloWorld")
		os.Exit(1)
	}

	// Pod logs, exec sessions and the pod watch go through client-go directly
	kubeClient, err := k8s.NewForConfig(restConfig)
	if err != nil {
		setupLog.Error(err, "unable to create kubernetes client")
		os.Exit(1)
	}

	watcherLog := ctrl.Log.WithName("bootstrap")
	channel := podexec.NewChannel(
		kubeClient.RESTConfig(),
		kubeClient.Clientset(),
		podexec.WithLogger(ctrl.Log.WithName("exec")),
		podexec.WithMetrics(enableMetrics),
	)
	watcher := bootstrap.NewWatcher(
		mgr.GetAPIReader(),
		kubeClient,
		channel,
		workload.NewScaler(mgr.GetClient()),
		bootstrap.WithNamespace(cfg.Namespace),
		bootstrap.WithResourceName(cfg.ResourceName),
		bootstrap.WithDelays(cfg.StabilizeDelay, cfg.VerifyDelay),
		bootstrap.WithSerialization(cfg.SerializeBootstrap),
		bootstrap.WithLogger(watcherLog),
		bootstrap.WithMetrics(enableMetrics),
	)

	podWatch := kubeClient.NewPodWatch(cfg.Namespace, watcher.HandlePodEvent,
		k8s.WithRetryDelay(cfg.WatchRetryDelay),
		k8s.WithWorkers(cfg.BootstrapWorkers),
		k8s.WithLogger(ctrl.Log.WithName("podwatch")),
	)
	if err := mgr.Add(podWatch); err != nil {
		setupLog.Error(err, "unable to register pod watch")
		os.Exit(1)
	}

	// Add health checks
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
