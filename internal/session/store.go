package session

import "context"

// Store maps a browser session identifier to its cart identifier. The
// mapping is created lazily: a session has no cart until the first
// cart-creating request binds one.
type Store interface {
	// CartID returns the cart bound to the session, or "" when the session
	// has none yet.
	CartID(ctx context.Context, sessionID string) (string, error)
	BindCart(ctx context.Context, sessionID, cartID string) error
}
