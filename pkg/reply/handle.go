package reply

// MessageRef identifies a single chat message: the platform timestamp (or
// message id), the channel it was posted in, and optionally the thread it
// belongs to. Identity is defined over (Timestamp, Channel) only — edit and
// delete events reference a message without its thread, so ThreadID is
// carried but excluded from Key.
type MessageRef struct {
	Timestamp string `json:"timestamp"`
	Channel   string `json:"channel"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// Key returns the identity key for map lookups. ThreadID does not
// participate.
func (m MessageRef) Key() string {
	return m.Timestamp + "\x00" + m.Channel
}

// Same reports whether two refs identify the same message.
func (m MessageRef) Same(other MessageRef) bool {
	return m.Timestamp == other.Timestamp && m.Channel == other.Channel
}
