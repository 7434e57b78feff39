package reply

// AttachmentType discriminates the variant stored in an Attachment.
type AttachmentType string

// Supported attachment types.
const (
	AttachmentText  AttachmentType = "text"
	AttachmentImage AttachmentType = "image"
	AttachmentTable AttachmentType = "table"
)

// TableRow is one labeled value in a table attachment.
type TableRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Attachment is a flat union representing one block of formatted reply
// content. The Type field discriminates which fields are meaningful:
// text attachments carry Title and Body, image attachments carry Title,
// ImageURL and an optional Footer, table attachments carry Rows.
type Attachment struct {
	Type     AttachmentType `json:"type"`
	Title    string         `json:"title,omitempty"`
	Body     string         `json:"body,omitempty"`
	ImageURL string         `json:"image_url,omitempty"`
	Footer   string         `json:"footer,omitempty"`
	Rows     []TableRow     `json:"rows,omitempty"`
}

// NewTextAttachment creates a text attachment.
func NewTextAttachment(title, body string) Attachment {
	return Attachment{Type: AttachmentText, Title: title, Body: body}
}

// NewImageAttachment creates an image attachment.
func NewImageAttachment(title, imageURL string) Attachment {
	return Attachment{Type: AttachmentImage, Title: title, ImageURL: imageURL}
}

// NewTableAttachment creates a table attachment from the given rows.
func NewTableAttachment(rows ...TableRow) Attachment {
	return Attachment{Type: AttachmentTable, Rows: rows}
}

// AddRow appends a labeled value to a table attachment.
func (a *Attachment) AddRow(label, value string) {
	a.Rows = append(a.Rows, TableRow{Label: label, Value: value})
}
