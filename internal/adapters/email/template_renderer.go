package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"frameit/internal/domain"
)

// Templates are kept inline: there is exactly one email in the product and a
// templates directory would be overhead.
var (
	invitationSubject = `You're invited to {{.EventName}}`

	invitationHTML = `<p>Hi,</p>
<p>{{.HostName}} invited you to <strong>{{.EventName}}</strong>.</p>
<p>At the door, look up event <code>{{.EventID}}</code> (or scan the QR code on display)
and enter access code <strong>{{.AccessCode}}</strong> to join and share your photos.</p>
<p>See you there!</p>`

	invitationText = `Hi,

{{.HostName}} invited you to {{.EventName}}.

At the door, look up event {{.EventID}} (or scan the QR code on display)
and enter access code {{.AccessCode}} to join and share your photos.

See you there!`
)

var emailTemplates = map[string]struct {
	subject string
	html    string
	text    string
}{
	"event_invitation": {invitationSubject, invitationHTML, invitationText},
}

type templateRenderer struct{}

// NewTemplateRenderer returns an EmailTemplateRenderer over the built-in templates.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{}
}

// Render executes the named template with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	tmpl, ok := emailTemplates[templateName]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	subject, err = renderText(templateName+"_subject", tmpl.subject, data)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	htmlBody, err = renderHTML(templateName+"_html", tmpl.html, data)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	textBody, err = renderText(templateName+"_text", tmpl.text, data)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func renderHTML(name, tmplStr string, data any) (string, error) {
	t, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(name, tmplStr string, data any) (string, error) {
	t, err := texttemplate.New(name).Parse(tmplStr)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
