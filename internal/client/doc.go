// Package client holds the shared state of one running daemon session
// and the plumbing around it: the Context every event handler reconciles
// into, the deferred-action worker, and the operator notification feed
// with its bounded history collector.
package client
