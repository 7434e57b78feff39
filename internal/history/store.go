// Package history tracks which outbound replies each inbound message
// produced, so that edits and deletions can be reconciled against prior
// replies without re-deriving identity from content.
package history

import "github.com/tutorbot/tutor/pkg/reply"

// Store maps an inbound message to the ordered list of outbound replies it
// produced so far. Entries live for the process lifetime; there is no
// persistence. Implementations must be safe for concurrent use, and access
// to distinct inbound messages must not contend.
type Store interface {
	// Append adds outbound refs to the inbound message's entry, creating
	// it if absent.
	Append(inbound reply.MessageRef, outbound ...reply.MessageRef)

	// Lookup returns a copy of the inbound message's outbound list and
	// whether an entry exists.
	Lookup(inbound reply.MessageRef) ([]reply.MessageRef, bool)

	// Replace overwrites the inbound message's outbound list.
	Replace(inbound reply.MessageRef, outbound []reply.MessageRef)

	// Remove deletes the inbound message's entry.
	Remove(inbound reply.MessageRef)

	// Len returns the number of tracked inbound messages.
	Len() int
}
