package emailscan

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// parsedEmail is the raw material the analyzer works on: the headers it cares
// about, the chosen body text and the attachment count.
type parsedEmail struct {
	From        string
	ReturnPath  string
	Subject     string
	AuthResults string
	ReceivedSPF string

	Body            string
	AttachmentCount int
}

// bodyParts accumulates the text candidates and attachment count found while
// walking a (possibly nested) multipart tree.
type bodyParts struct {
	plain       string
	html        string
	attachments int
}

// parseMessage parses a raw RFC 822 message into headers and body text.
//
// Body preference: the first text/plain part if present, else the first
// text/html part, else the sole body for non-multipart messages. Parts with
// an attachment content-disposition are excluded from the body and counted.
func parseMessage(raw string) (parsedEmail, error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return parsedEmail{}, fmt.Errorf("failed to parse message: %w", err)
	}

	parsed := parsedEmail{
		From:        msg.Header.Get("From"),
		ReturnPath:  msg.Header.Get("Return-Path"),
		Subject:     msg.Header.Get("Subject"),
		AuthResults: msg.Header.Get("Authentication-Results"),
		ReceivedSPF: msg.Header.Get("Received-SPF"),
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// Single-part message: the whole payload is the body.
		body, err := decodeBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return parsed, err
		}
		parsed.Body = body
		return parsed, nil
	}

	var parts bodyParts
	if err := walkParts(multipart.NewReader(msg.Body, params["boundary"]), &parts); err != nil {
		return parsed, err
	}

	parsed.AttachmentCount = parts.attachments
	if parts.plain != "" {
		parsed.Body = parts.plain
	} else {
		parsed.Body = parts.html
	}
	return parsed, nil
}

// walkParts traverses a multipart body depth-first. Containers such as
// multipart/mixed wrapping multipart/alternative are descended into, so text
// candidates and attachments are found at any nesting level.
func walkParts(reader *multipart.Reader, parts *bodyParts) error {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read multipart body: %w", err)
		}

		if isAttachment(part.Header) {
			parts.attachments++
			continue
		}

		partType, partParams, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))

		if strings.HasPrefix(partType, "multipart/") {
			if err := walkParts(multipart.NewReader(part, partParams["boundary"]), parts); err != nil {
				return err
			}
			continue
		}

		if partType != "text/plain" && partType != "text/html" {
			continue
		}

		text, err := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			continue // skip undecodable parts, keep scanning the rest
		}

		if partType == "text/plain" && parts.plain == "" {
			parts.plain = text
		} else if partType == "text/html" && parts.html == "" {
			parts.html = text
		}
	}
}

// isAttachment checks the content-disposition marker on a MIME part.
func isAttachment(header textproto.MIMEHeader) bool {
	return strings.Contains(strings.ToLower(header.Get("Content-Disposition")), "attachment")
}

// decodeBody reads a body applying its transfer encoding. Unknown encodings
// are read verbatim.
func decodeBody(r io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(data), nil
}
