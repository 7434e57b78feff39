// Package workspace defines the authorized chat workspaces the bot serves
// and their SQLite-backed store.
package workspace

// Platform identifies the chat platform a workspace lives on.
type Platform string

// Supported platforms.
const (
	PlatformSlack   Platform = "Slack"
	PlatformDiscord Platform = "Discord"
)

// Workspace is one authorized chat workspace. Loaded at startup (or added
// through the OAuth handshake) and immutable thereafter.
type Workspace struct {
	Enabled  bool
	Platform Platform
	ID       string
	Name     string
	BotToken string

	// AllowSingleDelimiter controls whether single-character reference
	// delimiters are accepted in addition to doubled ones.
	AllowSingleDelimiter bool
}

// Label returns the human-readable identity used in telemetry labels.
func (w Workspace) Label() string {
	return w.Name + " (" + w.ID + ")"
}
