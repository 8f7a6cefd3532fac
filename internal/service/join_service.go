package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/mailer"
	"stemgharbiya/siteapi/internal/model"
	"stemgharbiya/siteapi/internal/repository"
	"stemgharbiya/siteapi/internal/schema"
	"stemgharbiya/siteapi/internal/turnstile"
)

// TokenVerifier is satisfied by *turnstile.Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, token, ip string) error
}

// AdmissionLimiter is satisfied by *ratelimit.Limiter.
type AdmissionLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type JoinService interface {
	// Submit runs the full admission pipeline for a validated join request.
	// warning is true when the record was stored but at least one
	// notification send failed.
	Submit(ctx context.Context, req *schema.JoinRequest, ip string) (warning bool, err error)
}

type joinService struct {
	apps      repository.ApplicationRepository
	verifier  TokenVerifier
	limiter   AdmissionLimiter
	sender    mailer.Sender
	teamEmail string
	logger    *zap.Logger
}

func NewJoinService(
	apps repository.ApplicationRepository,
	verifier TokenVerifier,
	limiter AdmissionLimiter,
	sender mailer.Sender,
	teamEmail string,
	logger *zap.Logger,
) JoinService {
	return &joinService{
		apps:      apps,
		verifier:  verifier,
		limiter:   limiter,
		sender:    sender,
		teamEmail: teamEmail,
		logger:    logger,
	}
}

func (s *joinService) Submit(ctx context.Context, req *schema.JoinRequest, ip string) (bool, error) {
	// Startup validation should make this unreachable; fail closed anyway
	// without revealing which dependency is missing.
	if s.apps == nil || s.verifier == nil || s.limiter == nil || s.sender == nil {
		return false, ErrServiceUnavailable
	}

	if err := verifyToken(ctx, s.verifier, s.logger, req.TurnstileToken, ip); err != nil {
		return false, err
	}

	admitted, err := s.limiter.Allow(ctx, req.SchoolEmail)
	if err != nil {
		s.logger.Error("rate limiter failed", zap.Error(err))
		return false, fmt.Errorf("%w: rate limiter", ErrServiceUnavailable)
	}
	if !admitted {
		return false, ErrRateLimited
	}

	exists, err := s.apps.ExistsByNaturalKey(ctx, req.SchoolEmail, req.GithubUsername)
	if err != nil {
		s.logger.Error("duplicate check failed", zap.Error(err))
		return false, fmt.Errorf("%w: duplicate check", ErrServiceUnavailable)
	}
	if exists {
		return false, ErrDuplicateApplication
	}

	app := &model.Application{
		FullName:       strings.TrimSpace(req.FullName),
		SchoolEmail:    req.SchoolEmail,
		GithubUsername: req.GithubUsername,
		SeniorYear:     req.SeniorYear,
		Interests:      strings.Join(req.Interests, ","),
		Motivation:     strings.TrimSpace(req.Motivation),
	}
	if err := s.apps.Create(ctx, app); err != nil {
		s.logger.Error("application insert failed", zap.Error(err))
		return false, fmt.Errorf("%w: persist application", ErrServiceUnavailable)
	}

	// The record is durable from here on. Notification failures downgrade
	// to a warning and never roll anything back.
	failed := sendAll(ctx, s.sender,
		mailer.JoinTeamMail(s.teamEmail, app),
		mailer.JoinAckMail(app),
	)
	for _, err := range failed {
		s.logger.Error("join notification failed", zap.Error(err))
	}
	return len(failed) > 0, nil
}

// verifyToken maps the verifier's outcome onto the service error taxonomy.
func verifyToken(ctx context.Context, v TokenVerifier, logger *zap.Logger, token, ip string) error {
	err := v.Verify(ctx, token, ip)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, turnstile.ErrMissingToken),
		errors.Is(err, turnstile.ErrVerificationFailed):
		return ErrVerificationFailed
	case errors.Is(err, turnstile.ErrNotConfigured):
		logger.Error("turnstile secret missing")
		return ErrServiceUnavailable
	default:
		return ErrVerifierUnavailable
	}
}

// sendAll dispatches every mail concurrently and waits for all of them,
// collecting failures without letting one send cancel another.
func sendAll(ctx context.Context, sender mailer.Sender, mails ...mailer.Mail) []error {
	var wg sync.WaitGroup
	results := make([]error, len(mails))
	for i, m := range mails {
		wg.Add(1)
		go func(i int, m mailer.Mail) {
			defer wg.Done()
			results[i] = sender.Send(ctx, m)
		}(i, m)
	}
	wg.Wait()

	var failed []error
	for _, err := range results {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}
