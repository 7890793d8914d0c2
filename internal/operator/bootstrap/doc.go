// Package bootstrap drives freshly added pods of a HelloWorld workload
// through the payload injection sequence.
//
// For every pod added to the watched namespace whose name contains the
// workload name, the Watcher waits for the pod to settle, checks the pod log
// for the payload, injects it through an exec session when it is missing,
// and checks the log again. Only a verified pod admits the next replica: the
// Watcher then grows the StatefulSet by one until the desired count is met.
//
// The pod log is the only completion signal. The placeholder container prints
// the injected file in a loop, so the payload shows up in the log once the
// write has landed.
package bootstrap
