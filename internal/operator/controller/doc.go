// Package controller implements the Kubernetes controller for HelloWorld
// custom resources.
//
// For every create or update of a HelloWorld the controller compares the
// desired replica count with the observed replica count of the backing
// StatefulSet. A missing StatefulSet is created with a single replica.
// Scale-up moves one replica per pass and leaves further growth to the
// bootstrap watcher; scale-down goes straight to the desired count.
//
// Deleting a HelloWorld does not touch the StatefulSet.
package controller
