package pipeline

import (
	"bytes"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"optilink/internal"
	"optilink/internal/util"
)

// Business names hide in free text as an uppercase run ending in an optical
// industry keyword, e.g. "BRIGHT VISION OPTICAL".
var businessNamePattern = regexp.MustCompile(`([A-Z][A-Z\s&]+(?:OPTICAL|OPTOMETRY|EYE|VISION|LENS))`)

// ExtractBusinessInfo derives the sender domain and a best-effort business name
// from an email row. The name is assembled from whichever of subject, sender
// and summary carry a match; nil when none of them do.
func ExtractBusinessInfo(row internal.EmailRow) (domain string, extracted *string) {
	domain = util.ExtractEmailDomain(row.FromAddress)

	parts := make([]string, 0, 3)
	for _, field := range []string{row.Subject, row.Sender, row.Summary} {
		if m := businessNamePattern.FindString(field); m != "" {
			parts = append(parts, strings.TrimSpace(m))
		}
	}
	if len(parts) == 0 {
		return domain, nil
	}

	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return domain, nil
	}
	return domain, util.StringPtr(joined)
}

// EmailContent is the flattened view of a raw RFC-822 message.
type EmailContent struct {
	FromAddress string
	Sender      string
	Subject     string
	Summary     string
}

// ExtractEmailContent parses a raw message into the fields the matcher works
// from. HTML-only bodies are reduced to text, and text found in PDF
// attachments is appended to the summary so embedded statements still feed the
// business-name patterns.
func ExtractEmailContent(raw []byte) (EmailContent, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return EmailContent{}, err
	}

	out := EmailContent{Subject: env.GetHeader("Subject")}

	fromHeader := env.GetHeader("From")
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		out.FromAddress = addr.Address
		out.Sender = addr.Name
	} else {
		out.FromAddress = strings.TrimSpace(fromHeader)
	}
	if out.Sender == "" {
		out.Sender = out.FromAddress
	}

	text := strings.TrimSpace(env.Text)
	if text == "" && env.HTML != "" {
		text = htmlToText(env.HTML)
	}

	for _, att := range env.Attachments {
		if !strings.HasSuffix(strings.ToLower(att.FileName), ".pdf") {
			continue
		}
		if extra := pdfToText(att.Content); extra != "" {
			text = strings.TrimSpace(text + "\n" + extra)
		}
	}

	out.Summary = text
	return out, nil
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(doc.Text(), " "))
}

func pdfToText(content []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
