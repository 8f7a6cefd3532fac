package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/mailer"
	"stemgharbiya/siteapi/internal/model"
	"stemgharbiya/siteapi/internal/repository"
	"stemgharbiya/siteapi/internal/schema"
)

type ContactService interface {
	// Submit runs the admission pipeline for a validated contact message.
	// No duplicate rule applies. warning mirrors JoinService.Submit.
	Submit(ctx context.Context, req *schema.ContactRequest, ip string) (warning bool, err error)
}

type contactService struct {
	contacts  repository.ContactRepository
	verifier  TokenVerifier
	limiter   AdmissionLimiter
	sender    mailer.Sender
	teamEmail string
	logger    *zap.Logger
}

func NewContactService(
	contacts repository.ContactRepository,
	verifier TokenVerifier,
	limiter AdmissionLimiter,
	sender mailer.Sender,
	teamEmail string,
	logger *zap.Logger,
) ContactService {
	return &contactService{
		contacts:  contacts,
		verifier:  verifier,
		limiter:   limiter,
		sender:    sender,
		teamEmail: teamEmail,
		logger:    logger,
	}
}

func (s *contactService) Submit(ctx context.Context, req *schema.ContactRequest, ip string) (bool, error) {
	if s.contacts == nil || s.verifier == nil || s.limiter == nil || s.sender == nil {
		return false, ErrServiceUnavailable
	}

	if err := verifyToken(ctx, s.verifier, s.logger, req.TurnstileToken, ip); err != nil {
		return false, err
	}

	admitted, err := s.limiter.Allow(ctx, req.Email)
	if err != nil {
		s.logger.Error("rate limiter failed", zap.Error(err))
		return false, fmt.Errorf("%w: rate limiter", ErrServiceUnavailable)
	}
	if !admitted {
		return false, ErrRateLimited
	}

	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   req.Email,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		s.logger.Error("contact insert failed", zap.Error(err))
		return false, fmt.Errorf("%w: persist contact message", ErrServiceUnavailable)
	}

	failed := sendAll(ctx, s.sender,
		mailer.ContactTeamMail(s.teamEmail, msg),
		mailer.ContactAckMail(msg),
	)
	for _, err := range failed {
		s.logger.Error("contact notification failed", zap.Error(err))
	}
	return len(failed) > 0, nil
}
