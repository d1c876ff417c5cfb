// gateway/gateway.go
package gateway

import "context"

// Invoker is the remote service gateway: a set of named asynchronous
// operations. Queries and mutations share the same call shape; which
// operations invalidate which cache keys is the caller's concern.
//
// args is serialized as the request payload (nil for no arguments).
// When result is non-nil the response payload is decoded into it.
type Invoker interface {
	Invoke(ctx context.Context, op string, args any, result any) error
}
