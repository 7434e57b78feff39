package slack

import "github.com/tutorbot/tutor/pkg/reply"

// renderAttachments maps the engine's attachment union onto Slack's legacy
// attachment shape, one arm per variant.
func renderAttachments(atts []reply.Attachment) []attachment {
	out := make([]attachment, 0, len(atts))
	for _, a := range atts {
		switch a.Type {
		case reply.AttachmentText:
			out = append(out, attachment{Title: a.Title, Text: a.Body})

		case reply.AttachmentImage:
			out = append(out, attachment{Title: a.Title, Text: "", ImageURL: a.ImageURL, Footer: a.Footer})

		case reply.AttachmentTable:
			fields := make([]attachmentField, 0, len(a.Rows))
			for _, row := range a.Rows {
				fields = append(fields, attachmentField{Title: row.Label, Value: row.Value, Short: true})
			}
			out = append(out, attachment{Fields: fields})
		}
	}
	return out
}
