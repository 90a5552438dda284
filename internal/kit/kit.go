// Package kit provides the endpoint plumbing shared by domdrive's tool
// surface: a transport-agnostic Endpoint type, middleware chaining, and
// MCP tool registration.
package kit

import "context"

// Endpoint is one logical operation: typed request in, response out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
