package mailer

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"stemgharbiya/siteapi/internal/model"
)

// All user-submitted values are HTML-escaped here, at render time only.
// Stored records keep the raw text.

func esc(s string) string { return html.EscapeString(s) }

// escMultiline escapes then converts newlines so free text renders as
// written.
func escMultiline(s string) string {
	return strings.ReplaceAll(esc(s), "\n", "<br/>")
}

// truncate caps s at n characters, never splitting a multibyte rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func interestsHTML(joined string) string {
	parts := strings.Split(joined, ",")
	for i, p := range parts {
		parts[i] = esc(strings.TrimSpace(p))
	}
	return strings.Join(parts, ", ")
}

// JoinTeamMail is the full-detail notification to the operations inbox.
func JoinTeamMail(teamEmail string, app *model.Application) Mail {
	var b strings.Builder
	b.WriteString("<h2>New Dev Team Application</h2>")
	b.WriteString("<p><strong>Name:</strong> " + esc(app.FullName) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + esc(app.SchoolEmail) + "</p>")
	b.WriteString("<p><strong>GitHub:</strong> " + esc(app.GithubUsername) + "</p>")
	b.WriteString("<p><strong>Senior Year:</strong> " + esc(strings.ToUpper(app.SeniorYear)) + "</p>")
	b.WriteString("<p><strong>Interests:</strong> " + interestsHTML(app.Interests) + "</p>")
	b.WriteString("<p><strong>Motivation:</strong> " + escMultiline(app.Motivation) + "</p>")
	b.WriteString("<p><strong>Submitted:</strong> " + app.CreatedAt.Format("2006-01-02") + "</p>")
	b.WriteString("<hr/>")
	b.WriteString(fmt.Sprintf(
		`<p><a href="https://github.com/%s">View applicant's GitHub profile</a></p>`,
		url.PathEscape(app.GithubUsername),
	))

	return Mail{
		To:      teamEmail,
		Subject: "New Dev Team Application: " + truncate(app.FullName, 50),
		HTML:    b.String(),
	}
}

// JoinAckMail is the acknowledgement sent back to the applicant, with a
// summarized echo of the application.
func JoinAckMail(app *model.Application) Mail {
	var b strings.Builder
	b.WriteString("<p>Hi " + esc(app.FullName) + ",</p>")
	b.WriteString("<p>Thank you for applying to join the STEM Gharbiya Dev Team!</p>")
	b.WriteString("<p><strong>Application Summary:</strong></p>")
	b.WriteString("<ul>")
	b.WriteString("<li><strong>GitHub:</strong> " + esc(app.GithubUsername) + "</li>")
	b.WriteString("<li><strong>Senior Year:</strong> " + esc(strings.ToUpper(app.SeniorYear)) + "</li>")
	b.WriteString("<li><strong>Interests:</strong> " + interestsHTML(app.Interests) + "</li>")
	b.WriteString("</ul>")
	b.WriteString("<p><strong>What happens next?</strong></p>")
	b.WriteString("<ol>")
	b.WriteString("<li>We'll verify your school email</li>")
	b.WriteString("<li>Review your application (2-3 business days)</li>")
	b.WriteString("<li>Contact you with next steps if approved</li>")
	b.WriteString("</ol>")
	b.WriteString(`<p>In the meantime, check out our projects: <a href="https://github.com/stemgharbiya">github.com/stemgharbiya</a></p>`)
	b.WriteString("<p>Questions? Reply to this email.</p>")
	b.WriteString("<p>— STEM Gharbiya Team</p>")

	return Mail{
		To:      app.SchoolEmail,
		Subject: "Application Received - STEM Gharbiya Dev Team",
		HTML:    b.String(),
	}
}

// ContactTeamMail forwards a contact message to the operations inbox.
func ContactTeamMail(teamEmail string, msg *model.ContactMessage) Mail {
	var b strings.Builder
	b.WriteString("<h2>New Contact Message</h2>")
	b.WriteString("<p><strong>Name:</strong> " + esc(msg.Name) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + esc(msg.Email) + "</p>")
	b.WriteString("<p><strong>Subject:</strong> " + esc(msg.Subject) + "</p>")
	b.WriteString("<p><strong>Message:</strong></p>")
	b.WriteString("<p>" + escMultiline(msg.Message) + "</p>")
	b.WriteString("<p><strong>Submitted:</strong> " + msg.CreatedAt.Format("2006-01-02") + "</p>")

	return Mail{
		To:      teamEmail,
		Subject: "New Contact Message: " + truncate(msg.Subject, 80),
		HTML:    b.String(),
	}
}

// ContactAckMail is the acknowledgement sent back to the submitter.
func ContactAckMail(msg *model.ContactMessage) Mail {
	var b strings.Builder
	b.WriteString("<p>Hi " + esc(msg.Name) + ",</p>")
	b.WriteString("<p>Thank you for contacting STEM Gharbiya. We received your message.</p>")
	b.WriteString("<p><strong>Summary:</strong></p>")
	b.WriteString("<ul>")
	b.WriteString("<li><strong>Subject:</strong> " + esc(msg.Subject) + "</li>")
	b.WriteString("<li><strong>Message:</strong> " + escMultiline(msg.Message) + "</li>")
	b.WriteString("</ul>")
	b.WriteString("<p>Our team will review your message and get back to you as soon as possible.</p>")
	b.WriteString("<p>STEM Gharbiya Team</p>")

	return Mail{
		To:      msg.Email,
		Subject: "Message Received - STEM Gharbiya",
		HTML:    b.String(),
	}
}
