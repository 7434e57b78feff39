package reconcile

import (
	"context"

	"github.com/tutorbot/tutor/pkg/reply"
)

// Sink is the transport surface an adapter exposes to the reconciler. The
// engine never talks to a chat platform directly; each adapter implements
// Sink over its own API.
type Sink interface {
	// Post sends a fresh reply to channel, optionally threaded, and
	// returns the ref of the posted message.
	Post(ctx context.Context, channel, threadID string, rep reply.Reply) (reply.MessageRef, error)

	// Update replaces the content of a previously posted reply.
	Update(ctx context.Context, ref reply.MessageRef, rep reply.Reply) error

	// Delete removes a previously posted reply.
	Delete(ctx context.Context, ref reply.MessageRef) error
}
