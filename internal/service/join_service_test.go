package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/mailer"
	"stemgharbiya/siteapi/internal/model"
	"stemgharbiya/siteapi/internal/schema"
	"stemgharbiya/siteapi/internal/turnstile"
)

type fakeAppRepo struct {
	mu      sync.Mutex
	created []*model.Application
	exists  bool

	createErr error
	existsErr error
}

func (f *fakeAppRepo) Create(_ context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, app)
	return nil
}

func (f *fakeAppRepo) ExistsByNaturalKey(_ context.Context, _, _ string) (bool, error) {
	return f.exists, f.existsErr
}

type fakeContactRepo struct {
	created   []*model.ContactMessage
	createErr error
}

func (f *fakeContactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, msg)
	return nil
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(_ context.Context, _, _ string) error { return f.err }

type fakeLimiter struct {
	admitted bool
	err      error
	keys     []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.admitted, f.err
}

// fakeSender fails sends whose recipient is in failTo.
type fakeSender struct {
	mu     sync.Mutex
	sent   []mailer.Mail
	failTo map[string]bool
}

func (f *fakeSender) Send(_ context.Context, m mailer.Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	if f.failTo[m.To] {
		return errors.New("send failed")
	}
	return nil
}

func validJoinRequest() *schema.JoinRequest {
	return &schema.JoinRequest{
		FullName:       "  Ahmed Hassan  ",
		SchoolEmail:    "ahmed.1925001@stemgharbiya.moe.edu.eg",
		GithubUsername: "ahmed-hassan",
		SeniorYear:     "S26",
		Interests:      schema.InterestList{"Web Development", "Open Source"},
		Motivation:     "I want to <b>build</b> things for my school.",
		TurnstileToken: "tok",
		Agreement:      true,
	}
}

type joinFixture struct {
	repo     *fakeAppRepo
	verifier *fakeVerifier
	limiter  *fakeLimiter
	sender   *fakeSender
	svc      JoinService
}

func newJoinFixture() *joinFixture {
	f := &joinFixture{
		repo:     &fakeAppRepo{},
		verifier: &fakeVerifier{},
		limiter:  &fakeLimiter{admitted: true},
		sender:   &fakeSender{},
	}
	f.svc = NewJoinService(f.repo, f.verifier, f.limiter, f.sender, "team@example.com", zap.NewNop())
	return f
}

func TestJoinSubmitAccepted(t *testing.T) {
	f := newJoinFixture()

	warning, err := f.svc.Submit(context.Background(), validJoinRequest(), "203.0.113.9")
	require.NoError(t, err)
	assert.False(t, warning)

	require.Len(t, f.repo.created, 1)
	app := f.repo.created[0]
	assert.Equal(t, "Ahmed Hassan", app.FullName, "surrounding whitespace is trimmed")
	assert.Equal(t, "I want to <b>build</b> things for my school.", app.Motivation,
		"stored text stays raw, escaping happens at render time")
	assert.Equal(t, "Web Development,Open Source", app.Interests)

	require.Len(t, f.sender.sent, 2)
	recipients := []string{f.sender.sent[0].To, f.sender.sent[1].To}
	assert.Contains(t, recipients, "team@example.com")
	assert.Contains(t, recipients, "ahmed.1925001@stemgharbiya.moe.edu.eg")
}

func TestJoinSubmitRateLimitKeyIsSchoolEmail(t *testing.T) {
	f := newJoinFixture()

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	require.NoError(t, err)
	require.Len(t, f.limiter.keys, 1)
	assert.Equal(t, "ahmed.1925001@stemgharbiya.moe.edu.eg", f.limiter.keys[0])
}

func TestJoinSubmitVerificationFailed(t *testing.T) {
	f := newJoinFixture()
	f.verifier.err = turnstile.ErrVerificationFailed

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.limiter.keys, "verification failure must not consume rate budget")
}

func TestJoinSubmitVerifierUnavailable(t *testing.T) {
	f := newJoinFixture()
	f.verifier.err = turnstile.ErrUnavailable

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrVerifierUnavailable)
	assert.Empty(t, f.repo.created)
}

func TestJoinSubmitVerifierNotConfigured(t *testing.T) {
	f := newJoinFixture()
	f.verifier.err = turnstile.ErrNotConfigured

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestJoinSubmitRateLimited(t *testing.T) {
	f := newJoinFixture()
	f.limiter.admitted = false

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.sender.sent)
}

func TestJoinSubmitDuplicate(t *testing.T) {
	f := newJoinFixture()
	f.repo.exists = true

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.sender.sent)
}

func TestJoinSubmitPersistFailure(t *testing.T) {
	f := newJoinFixture()
	f.repo.createErr = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, f.sender.sent, "no notification goes out for an unstored record")
}

func TestJoinSubmitWarningWhenOneSendFails(t *testing.T) {
	f := newJoinFixture()
	f.sender.failTo = map[string]bool{"team@example.com": true}

	warning, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	require.NoError(t, err, "notification failure never fails the submission")
	assert.True(t, warning)
	assert.Len(t, f.repo.created, 1, "record persisted exactly once")
	assert.Len(t, f.sender.sent, 2, "the second send is still attempted")
}

func TestJoinSubmitWarningWhenBothSendsFail(t *testing.T) {
	f := newJoinFixture()
	f.sender.failTo = map[string]bool{
		"team@example.com":                      true,
		"ahmed.1925001@stemgharbiya.moe.edu.eg": true,
	}

	warning, err := f.svc.Submit(context.Background(), validJoinRequest(), "")
	require.NoError(t, err)
	assert.True(t, warning)
	assert.Len(t, f.repo.created, 1)
}

func TestJoinSubmitMissingDependency(t *testing.T) {
	svc := NewJoinService(nil, &fakeVerifier{}, &fakeLimiter{admitted: true}, &fakeSender{}, "t@e.c", zap.NewNop())
	_, err := svc.Submit(context.Background(), validJoinRequest(), "")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
