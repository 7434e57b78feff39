package discord

import "github.com/tutorbot/tutor/pkg/reply"

// messagePayload is the message create/edit body.
type messagePayload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// renderPayload maps one Reply onto a single Discord message: text plus up
// to one embed per attachment, one arm per union variant.
func renderPayload(rep reply.Reply) messagePayload {
	payload := messagePayload{Content: rep.Text}
	for _, a := range rep.Attachments {
		switch a.Type {
		case reply.AttachmentText:
			payload.Embeds = append(payload.Embeds, embed{Title: a.Title, Description: a.Body})

		case reply.AttachmentImage:
			e := embed{Title: a.Title, Image: &embedImage{URL: a.ImageURL}}
			if a.Footer != "" {
				e.Footer = &embedFooter{Text: a.Footer}
			}
			payload.Embeds = append(payload.Embeds, e)

		case reply.AttachmentTable:
			fields := make([]embedField, 0, len(a.Rows))
			for _, row := range a.Rows {
				fields = append(fields, embedField{Name: row.Label, Value: row.Value, Inline: true})
			}
			payload.Embeds = append(payload.Embeds, embed{Fields: fields})
		}
	}
	return payload
}
