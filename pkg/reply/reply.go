// Package reply defines the platform-agnostic data contract between the
// interpretation engine and the chat-platform adapters: the Reply produced
// for one catalog reference, its attachment union, and the MessageRef
// identity used to correlate inbound messages with the replies they caused.
package reply

// Reply is the engine's output for one catalog reference. A Reply with
// attachments may have empty text; a Reply with no attachments carries
// only text.
type Reply struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TextReply creates a text-only reply.
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// WithAttachments creates a reply carrying only attachments.
func WithAttachments(attachments ...Attachment) Reply {
	return Reply{Attachments: attachments}
}

// Equal reports whether two replies have identical content. Table rows,
// attachment order, and all attachment fields participate.
func (r Reply) Equal(other Reply) bool {
	if r.Text != other.Text || len(r.Attachments) != len(other.Attachments) {
		return false
	}
	for i, a := range r.Attachments {
		b := other.Attachments[i]
		if a.Type != b.Type || a.Title != b.Title || a.Body != b.Body ||
			a.ImageURL != b.ImageURL || a.Footer != b.Footer || len(a.Rows) != len(b.Rows) {
			return false
		}
		for j, row := range a.Rows {
			if row != b.Rows[j] {
				return false
			}
		}
	}
	return true
}
