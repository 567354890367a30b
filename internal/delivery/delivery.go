// Package delivery defines the contract every transport server implements.
package delivery

import "context"

// Delivery is a long-running transport endpoint (HTTP server). Serve blocks
// until the server stops; shutdown is driven by the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
