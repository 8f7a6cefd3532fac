package service

import "errors"

var (
	// ErrVerificationFailed: the CAPTCHA provider rejected the token.
	// Clients get a generic retry message; provider codes stay in the logs.
	ErrVerificationFailed = errors.New("human verification failed")
	// ErrVerifierUnavailable: the CAPTCHA provider was unreachable or
	// answered non-2xx. Not retried within the request.
	ErrVerifierUnavailable = errors.New("verification service unavailable")
	// ErrRateLimited: the submitter's fixed window is exhausted.
	ErrRateLimited = errors.New("too many requests")
	// ErrDuplicateApplication: an application with the same
	// (schoolEmail, githubUsername) pair already exists.
	ErrDuplicateApplication = errors.New("application already exists")
	// ErrServiceUnavailable: a required dependency is missing or failed.
	// Which one is never exposed to the caller.
	ErrServiceUnavailable = errors.New("service unavailable")
)
