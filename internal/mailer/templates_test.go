package mailer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"stemgharbiya/siteapi/internal/model"
)

func sampleApplication() *model.Application {
	return &model.Application{
		FullName:       "Ahmed <script>alert(1)</script>",
		SchoolEmail:    "ahmed.1925001@stemgharbiya.moe.edu.eg",
		GithubUsername: "ahmed-hassan",
		SeniorYear:     "s26",
		Interests:      "Web Development,Open Source",
		Motivation:     "Line one\nLine <b>two</b>",
	}
}

func TestJoinTeamMailEscapesUserContent(t *testing.T) {
	m := JoinTeamMail("team@example.com", sampleApplication())

	assert.Equal(t, "team@example.com", m.To)
	assert.NotContains(t, m.HTML, "<script>")
	assert.Contains(t, m.HTML, "&lt;script&gt;")
	assert.Contains(t, m.HTML, "Line one<br/>Line &lt;b&gt;two&lt;/b&gt;")
	assert.Contains(t, m.HTML, "Web Development, Open Source")
	assert.Contains(t, m.HTML, `https://github.com/ahmed-hassan`)
	assert.Contains(t, m.HTML, "S26", "senior year is uppercased for display")
}

func TestJoinTeamMailSubjectTruncation(t *testing.T) {
	app := sampleApplication()
	app.FullName = strings.Repeat("n", 80)
	m := JoinTeamMail("team@example.com", app)
	assert.Equal(t, "New Dev Team Application: "+strings.Repeat("n", 50), m.Subject)
}

func TestJoinTeamMailSubjectTruncatesOnRuneBoundary(t *testing.T) {
	app := sampleApplication()
	app.FullName = strings.Repeat("م", 80)
	m := JoinTeamMail("team@example.com", app)

	assert.True(t, utf8.ValidString(m.Subject))
	assert.Equal(t, "New Dev Team Application: "+strings.Repeat("م", 50), m.Subject)
}

func TestJoinAckMailGoesToApplicant(t *testing.T) {
	m := JoinAckMail(sampleApplication())
	assert.Equal(t, "ahmed.1925001@stemgharbiya.moe.edu.eg", m.To)
	assert.Equal(t, "Application Received - STEM Gharbiya Dev Team", m.Subject)
	assert.NotContains(t, m.HTML, "<script>")
}

func TestContactTeamMail(t *testing.T) {
	msg := &model.ContactMessage{
		Name:    "Sara & Co",
		Email:   "sara@example.com",
		Subject: strings.Repeat("s", 100),
		Message: "Hello\nthere",
	}
	m := ContactTeamMail("team@example.com", msg)

	assert.Equal(t, "team@example.com", m.To)
	assert.Equal(t, "New Contact Message: "+strings.Repeat("s", 80), m.Subject)
	assert.Contains(t, m.HTML, "Sara &amp; Co")
	assert.Contains(t, m.HTML, "Hello<br/>there")
}

func TestContactAckMailGoesToSubmitter(t *testing.T) {
	msg := &model.ContactMessage{
		Name:    "Sara",
		Email:   "sara@example.com",
		Subject: "Hi",
		Message: "A question.",
	}
	m := ContactAckMail(msg)
	assert.Equal(t, "sara@example.com", m.To)
	assert.Equal(t, "Message Received - STEM Gharbiya", m.Subject)
}
