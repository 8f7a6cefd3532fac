// Package turnstile verifies Cloudflare Turnstile tokens against the
// siteverify endpoint. Exactly one verification attempt is made per request;
// failures are never retried here.
package turnstile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"stemgharbiya/siteapi/internal/config"
)

var (
	// ErrMissingToken means the client sent no usable token.
	ErrMissingToken = errors.New("missing verification token")
	// ErrVerificationFailed means the provider rejected the token. The
	// provider's error codes are logged server-side and never exposed.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrUnavailable means the provider could not be reached or answered
	// with a non-2xx status.
	ErrUnavailable = errors.New("verification service unavailable")
	// ErrNotConfigured means the server secret is absent. This is a server
	// misconfiguration, not a client error.
	ErrNotConfigured = errors.New("turnstile secret not configured")
)

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type Verifier struct {
	endpoint string
	secret   string
	client   *http.Client
	logger   *zap.Logger
}

func NewVerifier(cfg config.TurnstileConfig, logger *zap.Logger) *Verifier {
	return &Verifier{
		endpoint: cfg.SiteverifyURL,
		secret:   cfg.SecretKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Verify checks token with the provider, passing the caller IP along for the
// provider's audit trail. It returns nil on success and one of the package
// sentinel errors otherwise.
func (v *Verifier) Verify(ctx context.Context, token, ip string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if v.secret == "" {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	form.Set("remoteip", ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("turnstile request failed", zap.Error(err))
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.logger.Error("turnstile returned non-2xx", zap.Int("status", resp.StatusCode))
		return ErrUnavailable
	}

	var outcome siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		v.logger.Error("turnstile response unreadable", zap.Error(err))
		return ErrUnavailable
	}

	if !outcome.Success {
		v.logger.Warn("turnstile verification rejected",
			zap.Strings("error_codes", outcome.ErrorCodes),
			zap.String("ip", ip),
		)
		return ErrVerificationFailed
	}

	return nil
}
