// Package groutine starts named goroutines. Names show up as pprof
// labels and in the context, which makes long-lived workers (event
// drainers, action pumps, signal watchers) identifiable in profiles and
// debug logs.
package groutine

import (
	"context"
	"runtime/pprof"
)

type ctxKey struct{}

// Go starts a goroutine running fn with the given name attached as a
// pprof label and as a context value readable through GetName.
// Example usage:
//
//	groutine.Go(ctx, "event-drainer", func(ctx context.Context) {
//	    // work
//	})
//
// A nil parentCtx falls back to context.Background().
func Go(parentCtx context.Context, name string, fn func(ctx context.Context)) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx := context.WithValue(parentCtx, ctxKey{}, name)

	go pprof.Do(ctx, pprof.Labels("goroutine_name", name), fn)
}

// GetName returns the name a goroutine was started under, or the empty
// string outside a Go-started goroutine.
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(ctxKey{}).(string)
	return name
}
