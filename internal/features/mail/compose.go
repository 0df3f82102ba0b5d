package mail

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// Compose builds the RFC 5322 message: a text/html body followed by base64 attachments.
func Compose(from string, msg Message, date time.Time) ([]byte, error) {
	to := make([]*gomail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, &gomail.Address{Address: addr})
	}

	var h gomail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*gomail.Address{{Address: from}})
	h.SetAddressList("To", to)
	h.SetSubject(msg.Subject)

	var buf bytes.Buffer
	mw, err := gomail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	if msg.Text != "" || msg.HTML == "" {
		if err := writeInline(tw, "text/plain", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeInline(tw, "text/html", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(att.Filename))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		var ah gomail.AttachmentHeader
		ah.SetContentType(contentType, nil)
		ah.SetFilename(att.Filename)
		ah.Set("Content-Transfer-Encoding", "base64")

		w, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(att.Content); err != nil {
			return nil, fmt.Errorf("failed to write attachment %s: %w", att.Filename, err)
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeInline(tw *gomail.InlineWriter, contentType, body string) error {
	var ih gomail.InlineHeader
	ih.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	ih.Set("Content-Transfer-Encoding", "quoted-printable")
	w, err := tw.CreatePart(ih)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return w.Close()
}
