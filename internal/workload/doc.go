// Package workload describes the StatefulSet that backs a HelloWorld resource
// and the replica policy shared by the reconciler and the bootstrap watcher.
//
// Scale-up is admitted one replica at a time so every new pod can be
// bootstrapped before the next one is created. Scale-down goes straight to
// the desired count.
package workload
