package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// Data is what every template is executed with.
type Data struct {
	Record any
	Now    time.Time
}

type template struct {
	subject *texttemplate.Template
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// Templates renders named notifications.
type Templates struct {
	set map[string]template
}

type source struct {
	name, subject, html, text string
}

// DefaultTemplates returns the built-in notifications, keyed "<form>.user"
// and "<form>.operator".
func DefaultTemplates() *Templates {
	t := &Templates{set: make(map[string]template, len(builtin))}
	for _, src := range builtin {
		t.set[src.name] = template{
			subject: texttemplate.Must(texttemplate.New(src.name + ".subject").Parse(src.subject)),
			html:    htmltemplate.Must(htmltemplate.New(src.name + ".html").Parse(src.html)),
			text:    texttemplate.Must(texttemplate.New(src.name + ".text").Parse(src.text)),
		}
	}
	return t
}

// Render executes the named template for recipient to.
func (t *Templates) Render(name, to string, data Data) (Message, error) {
	tpl, ok := t.set[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}
	var subject, html, text bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tpl.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := tpl.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return Message{To: to, Subject: subject.String(), HTML: html.String(), Text: text.String()}, nil
}

const footer = `<p style="margin-top:18px;">Regards,<br/>SellHarborX Team</p>`

var builtin = []source{
	{
		name:    "contact.user",
		subject: "SellHarbor X — We received your message",
		html: `<html><body style="font-family:Arial,Helvetica,sans-serif;color:#222;">
<h2>Thanks {{.Record.Firstname}} — we received your message</h2>
<p>Thank you for contacting Sell Harbor X regarding <strong>{{.Record.Subject}}</strong>.</p>
<p>Our team will contact you soon to help you further.</p>` + footer + `</body></html>`,
		text: "Hi {{.Record.Firstname}},\n\nThanks for contacting SellHarbor X about '{{.Record.Subject}}'. Our team will contact you soon.\n\nRegards,\nSellHarbor X",
	},
	{
		name:    "contact.operator",
		subject: "New contact request - SellHarbor X",
		html: `<html><body><h3>New Contact Request</h3><ul>
<li><strong>Name:</strong> {{.Record.Firstname}}</li>
<li><strong>Email:</strong> {{.Record.Email}}</li>
<li><strong>Subject:</strong> {{.Record.Subject}}</li>
<li><strong>Message:</strong> {{.Record.Message}}</li>
<li><strong>Time (UTC):</strong> {{.Now.Format "2006-01-02T15:04:05Z07:00"}}</li>
</ul></body></html>`,
		text: "New contact: {{.Record.Firstname}} <{{.Record.Email}}> - {{.Record.Subject}}\n\n{{.Record.Message}}",
	},
	{
		name:    "newsletter.user",
		subject: "SellHarborX — Newsletter subscription confirmed",
		html: `<html><body style="font-family:Arial,Helvetica,sans-serif;color:#222;">
<h2>Welcome to the SellHarborX newsletter</h2>
<p>We will send marketplace updates, strategies and subscriber-only offers to {{.Record.Email}}.</p>` + footer + `</body></html>`,
		text: "Thanks for subscribing to the SellHarborX newsletter. We will send occasional updates and news.",
	},
	{
		name:    "newsletter.operator",
		subject: "New newsletter subscriber - SellHarborX",
		html: `<html><body><h3>New Newsletter Subscription</h3><ul>
<li><strong>Email:</strong> {{.Record.Email}}</li>
<li><strong>Time (UTC):</strong> {{.Now.Format "2006-01-02T15:04:05Z07:00"}}</li>
</ul></body></html>`,
		text: "New newsletter subscription: {{.Record.Email}}",
	},
	{
		name:    "audit.user",
		subject: "SellHarbor X — Audit request received",
		html: `<html><body style="font-family:Arial,Helvetica,sans-serif;color:#222;">
<h2>Thanks {{.Record.Firstname}}! Your Free Amazon Audit Request is Confirmed</h2>
<p><strong>Product URL:</strong> {{.Record.ProductURL}}</p>
<p>You will receive your detailed audit report within 24 to 48 hours.</p>` + footer + `</body></html>`,
		text: "Thanks {{.Record.Firstname}}, we received your audit request for {{.Record.Brandname}} ({{.Record.ProductURL}}). Our team will contact you soon.",
	},
	{
		name:    "audit.operator",
		subject: "New audit request - SellHarbor X",
		html: `<html><body><h3>New Audit Request</h3><ul>
<li><strong>Name:</strong> {{.Record.Firstname}} {{.Record.Lastname}}</li>
<li><strong>Email:</strong> {{.Record.Email}}</li>
<li><strong>Brand:</strong> {{.Record.Brandname}}</li>
<li><strong>Product URL:</strong> {{.Record.ProductURL}}</li>
<li><strong>Message:</strong> {{.Record.Message}}</li>
<li><strong>Time (UTC):</strong> {{.Now.Format "2006-01-02T15:04:05Z07:00"}}</li>
</ul></body></html>`,
		text: "New audit request: {{.Record.Firstname}} {{.Record.Lastname}} <{{.Record.Email}}> - {{.Record.Brandname}} - {{.Record.ProductURL}}",
	},
	{
		name:    "meeting.user",
		subject: "Meeting request received",
		html: `<html><body>
<h2>Strategy Call Successfully Booked</h2>
<p>Hi {{.Record.Name}},</p>
<p><strong>Date:</strong> {{.Record.Date}}<br><strong>Agenda:</strong> {{.Record.Agenda}}</p>
<p>We will send you a reminder before the meeting. To reschedule, simply reply to this email.</p>` + footer + `</body></html>`,
		text: "Your meeting is received for {{.Record.Date}}.",
	},
	{
		name:    "meeting.operator",
		subject: "New Meeting Booked",
		html: `<html><body><p><strong>New Meeting Booked</strong></p><ul>
<li>{{.Record.Name}}</li><li>{{.Record.Email}}</li><li>{{.Record.Date}}</li><li>{{.Record.Agenda}}</li>
</ul></body></html>`,
		text: "New meeting: {{.Record.Email}} on {{.Record.Date}}",
	},
	{
		name:    "package.user",
		subject: "Your Package Request — Sell Harbor X",
		html: `<html><body style="font-family:Arial,sans-serif;color:#222;">
<h3>Hi {{.Record.Name}},</h3>
<p>We’ve received your request for the <b>{{.Record.Package}}</b> package priced at <b>{{.Record.Price}}</b>.</p>
<p>Our account specialists will contact you within <b>24 hours</b>.</p>
<p style="font-size:0.9em;color:#666;">© {{.Now.Year}} Sell Harbor X. All rights reserved.</p></body></html>`,
		text: "Hi {{.Record.Name}},\n\nWe’ve received your {{.Record.Package}} package request ({{.Record.Price}}) at Sell Harbor X.\nOur team will reach out within 24 hours to get you started.\n\n— The Sell Harbor X Team",
	},
	{
		name:    "package.operator",
		subject: "New Package Form — {{.Record.Package}}",
		html: `<html><body><h2>New Package Request</h2><ul>
<li><b>Name:</b> {{.Record.Name}}</li>
<li><b>Email:</b> {{.Record.Email}}</li>
<li><b>Product:</b> {{.Record.Company}}</li>
<li><b>Package:</b> {{.Record.Package}}</li>
<li><b>Price:</b> {{.Record.Price}}</li>
<li><b>Business Type:</b> {{.Record.BusinessType}}</li>
<li><b>URL:</b> <a href="{{.Record.URL}}">{{.Record.URL}}</a></li>
<li><b>Notes:</b> {{if .Record.Notes}}{{.Record.Notes}}{{else}}—{{end}}</li>
<li><b>Submitted At (UTC):</b> {{.Now.Format "2006-01-02 15:04:05"}}</li>
</ul></body></html>`,
		text: "New package submission:\n- Package: {{.Record.Package}}\n- Price: {{.Record.Price}}\n- Name: {{.Record.Name}}\n- Email: {{.Record.Email}}\n- Business: {{.Record.BusinessType}}\n- Product: {{.Record.Company}}\n- URL: {{.Record.URL}}\n- Notes: {{if .Record.Notes}}{{.Record.Notes}}{{else}}—{{end}}\n",
	},
	{
		name:    "signup.user",
		subject: "Welcome to Sell Harbor X!",
		html: `<html><body style="font-family:Arial,sans-serif;">
<h2 style="color:#2d89ef;">Welcome to SellHarborX, {{.Record.Username}}!</h2>
<p>Thank you for joining Sellharborx. If you have any questions, our support team is always available to help.</p>` + footer + `</body></html>`,
		text: "Welcome to Sell Harbor X, {{.Record.Username}}!\n\nFeel free to reply to this email for assistance.\n\n— The Sell Harbor X Team",
	},
	{
		name:    "signup.operator",
		subject: "New User Registration",
		html: `<html><body><h2>New User Registration Alert</h2><table>
<tr><td><strong>Username:</strong></td><td>{{.Record.Username}}</td></tr>
<tr><td><strong>Email:</strong></td><td>{{.Record.Email}}</td></tr>
<tr><td><strong>Signup Time (UTC):</strong></td><td>{{.Now.Format "2006-01-02 15:04:05"}}</td></tr>
</table></body></html>`,
		text: "New user registration:\n\nUsername: {{.Record.Username}}\nEmail: {{.Record.Email}}\nSignup Time (UTC): {{.Now.Format \"2006-01-02 15:04:05\"}}\n",
	},
}
