package schema

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxFullNameLen   = 100
	maxEmailLen      = 100
	maxGithubLen     = 39
	minMotivationLen = 10
	maxMotivationLen = 2000
)

// AllowedInterests is the fixed allow-list shown on the join form.
var AllowedInterests = []string{
	"Web Development",
	"Mobile Development",
	"Machine Learning",
	"Data Science",
	"Cybersecurity",
	"Game Development",
	"Open Source",
	"DevOps",
}

var allowedInterestSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedInterests))
	for _, i := range AllowedInterests {
		m[i] = struct{}{}
	}
	return m
}()

// Student emails follow local.19YYXXX@stemgharbiya.moe.edu.eg, where 19YYXXX
// is the seven-digit student number.
var schoolEmailRe = regexp.MustCompile(`^[a-z0-9]+([._-][a-z0-9]+)*\.19\d{5}@stemgharbiya\.moe\.edu\.eg$`)

// GitHub username grammar: alphanumeric and hyphen, no leading, trailing or
// consecutive hyphens. Length is checked separately (max 39).
var githubUsernameRe = regexp.MustCompile(`^[a-zA-Z0-9]+(-[a-zA-Z0-9]+)*$`)

// Senior year: single letter prefix plus a two-digit year in 25..30.
var seniorYearRe = regexp.MustCompile(`^[Ss](2[5-9]|30)$`)

type JoinRequest struct {
	FullName       string       `json:"fullName"`
	SchoolEmail    string       `json:"schoolEmail"`
	GithubUsername string       `json:"githubUsername"`
	SeniorYear     string       `json:"seniorYear"`
	Interests      InterestList `json:"interests"`
	Motivation     string       `json:"motivation"`
	TurnstileToken string       `json:"cf-turnstile-response"`
	Agreement      Agreement    `json:"agreement"`
}

// ParseJoin decodes and validates a join submission. On failure it returns
// the first failing field only.
func ParseJoin(r io.Reader) (*JoinRequest, *FieldError) {
	var req JoinRequest
	if ferr := decodeStrict(r, &req); ferr != nil {
		return nil, ferr
	}
	if ferr := req.validate(); ferr != nil {
		return nil, ferr
	}
	return &req, nil
}

func (r *JoinRequest) validate() *FieldError {
	if r.FullName == "" {
		return &FieldError{Field: "fullName", Message: "full name is required"}
	}
	if utf8.RuneCountInString(r.FullName) > maxFullNameLen {
		return &FieldError{Field: "fullName", Message: fmt.Sprintf("full name must be at most %d characters", maxFullNameLen)}
	}

	if utf8.RuneCountInString(r.SchoolEmail) > maxEmailLen || !schoolEmailRe.MatchString(strings.ToLower(r.SchoolEmail)) {
		return &FieldError{Field: "schoolEmail", Message: "must be a valid STEM Gharbiya student email (name.19YYXXX@stemgharbiya.moe.edu.eg)"}
	}

	if r.GithubUsername == "" || utf8.RuneCountInString(r.GithubUsername) > maxGithubLen || !githubUsernameRe.MatchString(r.GithubUsername) {
		return &FieldError{Field: "githubUsername", Message: "must be a valid GitHub username"}
	}

	if !seniorYearRe.MatchString(r.SeniorYear) {
		return &FieldError{Field: "seniorYear", Message: "must be S25 through S30"}
	}

	if len(r.Interests) < 1 || len(r.Interests) > 5 {
		return &FieldError{Field: "interests", Message: "pick between 1 and 5 interests"}
	}
	for _, interest := range r.Interests {
		if _, ok := allowedInterestSet[interest]; !ok {
			return &FieldError{Field: "interests", Message: fmt.Sprintf("%q is not a recognized interest", interest)}
		}
	}

	// Bounds count characters, not bytes; Arabic input is the common case.
	if utf8.RuneCountInString(r.Motivation) < minMotivationLen {
		return &FieldError{Field: "motivation", Message: fmt.Sprintf("motivation must be at least %d characters", minMotivationLen)}
	}
	if utf8.RuneCountInString(r.Motivation) > maxMotivationLen {
		return &FieldError{Field: "motivation", Message: fmt.Sprintf("motivation must be at most %d characters", maxMotivationLen)}
	}

	if strings.TrimSpace(r.TurnstileToken) == "" {
		return &FieldError{Field: "cf-turnstile-response", Message: "verification token is required"}
	}

	if !bool(r.Agreement) {
		return &FieldError{Field: "agreement", Message: "you must agree to the Code of Conduct"}
	}

	return nil
}
