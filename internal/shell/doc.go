// Package shell implements the interactive console. It reads
// line-oriented commands, drives the daemon through the internal/bt
// interfaces, and surfaces the session's event feed between prompts.
// Command failures are printed and never terminate the loop.
package shell
