// Package podexec runs a single command inside a running pod over the
// Kubernetes exec subresource.
//
// A session is started with [Channel.Start] and reports its lifecycle to a
// [Listener]: OnOpen once the streams are established, OnFailure when the
// session could not be established or broke, OnClose when the remote command
// ended. Start does not wait for the command; callers that need completion
// wait on the returned channel.
package podexec
