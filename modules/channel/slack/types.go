package slack

import "encoding/json"

// apiResponse is the envelope every Web API method returns.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// authTestResponse identifies the bot this token belongs to.
type authTestResponse struct {
	apiResponse
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
}

// rtmConnectResponse carries the websocket URL for the RTM session.
type rtmConnectResponse struct {
	apiResponse
	URL  string `json:"url"`
	Self struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"self"`
}

// postMessageResponse is returned by chat.postMessage and chat.update.
type postMessageResponse struct {
	apiResponse
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// oauthAccessResponse is the payload of a successful oauth.access exchange.
type oauthAccessResponse struct {
	apiResponse
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	TeamName    string `json:"team_name"`
	TeamID      string `json:"team_id"`
	Bot         struct {
		BotUserID      string `json:"bot_user_id"`
		BotAccessToken string `json:"bot_access_token"`
	} `json:"bot"`
}

// attachment is the legacy Slack attachment shape the bot renders into.
type attachment struct {
	Title    string            `json:"title,omitempty"`
	Text     string            `json:"text"`
	ImageURL string            `json:"image_url,omitempty"`
	Footer   string            `json:"footer,omitempty"`
	Fields   []attachmentField `json:"fields,omitempty"`
}

type attachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// rtmEvent is one frame read from the RTM socket. Message events carry a
// subtype discriminating fresh posts from edits and deletions; edits nest
// the new revision under "message".
type rtmEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
	Channel  string `json:"channel"`
	User     string `json:"user"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`

	// message_changed
	Message *rtmInnerMessage `json:"message,omitempty"`

	// message_deleted
	DeletedTS string `json:"deleted_ts"`

	Raw json.RawMessage `json:"-"`
}

type rtmInnerMessage struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	User    string `json:"user"`
	BotID   string `json:"bot_id"`
	Text    string `json:"text"`
	TS      string `json:"ts"`
}
