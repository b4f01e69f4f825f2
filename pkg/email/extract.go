package email

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

// Image is an image found in an e-mail, ready to be sent for review.
type Image struct {
	Filename  string `json:"filename"`
	MimeType  string `json:"mimeType"`
	Base64    string `json:"base64"`
	Size      int    `json:"size"`
	Inline    bool   `json:"inline,omitempty"`
	ContentID string `json:"contentId,omitempty"`
}

type Message struct {
	Subject string  `json:"emailSubject"`
	From    string  `json:"emailFrom"`
	Date    string  `json:"emailDate"`
	Images  []Image `json:"images"`
}

// Extract parses an RFC 822 message and returns its image attachments followed
// by inline (CID) images. Duplicates by filename and size are dropped.
func Extract(r io.Reader) (Message, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return Message{}, fmt.Errorf("parse email: %w", err)
	}

	msg := Message{
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		Date:    normalizeDate(env.GetHeader("Date")),
		Images:  []Image{},
	}

	for _, p := range env.Attachments {
		if !isImage(p) {
			continue
		}
		msg.Images = append(msg.Images, toImage(p, fallbackName("attachment", len(msg.Images)+1), false))
	}

	inline := make([]*enmime.Part, 0, len(env.Inlines)+len(env.OtherParts))
	inline = append(inline, env.Inlines...)
	inline = append(inline, env.OtherParts...)
	for _, p := range inline {
		if !isImage(p) || (p.ContentID == "" && p.Disposition != "inline") {
			continue
		}
		if seen(msg.Images, p.FileName, len(p.Content)) {
			continue
		}
		msg.Images = append(msg.Images, toImage(p, fallbackName("inline", len(msg.Images)+1), true))
	}
	return msg, nil
}

func isImage(p *enmime.Part) bool {
	return strings.HasPrefix(strings.ToLower(p.ContentType), "image/")
}

func toImage(p *enmime.Part, fallback string, inline bool) Image {
	name := p.FileName
	if name == "" {
		name = fallback
	}
	return Image{
		Filename:  name,
		MimeType:  strings.ToLower(p.ContentType),
		Base64:    base64.StdEncoding.EncodeToString(p.Content),
		Size:      len(p.Content),
		Inline:    inline,
		ContentID: strings.Trim(p.ContentID, "<>"),
	}
}

func seen(images []Image, filename string, size int) bool {
	if filename == "" {
		return false
	}
	for _, img := range images {
		if img.Filename == filename && img.Size == size {
			return true
		}
	}
	return false
}

func fallbackName(prefix string, n int) string {
	return fmt.Sprintf("%s_%d", prefix, n)
}

// normalizeDate renders the Date header as RFC 3339 when it parses.
func normalizeDate(h string) string {
	if h == "" {
		return ""
	}
	t, err := mail.ParseDate(h)
	if err != nil {
		return h
	}
	return t.UTC().Format(time.RFC3339)
}
