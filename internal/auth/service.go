// Package auth orchestrates the two-phase authentication flow: a password
// check that issues and mails a one-time code, and a code check that mints a
// session token.
package auth

import (
	"context"
	"fmt"

	"github.com/jelius-sama/SelfAuth/internal/config"
	"github.com/jelius-sama/SelfAuth/internal/mail"
	"github.com/jelius-sama/SelfAuth/internal/obs"
	"github.com/jelius-sama/SelfAuth/internal/otp"
	"github.com/jelius-sama/SelfAuth/internal/session"
)

const mailSubject = "Your OTP"

// Service drives the credential lifecycle. It owns no state of its own; all
// mutable state lives in the two stores passed in at construction.
//
// Known gap: nothing binds an issued code to the password verification that
// produced it, nor to the requesting client. Any live code completes any
// pending code submission. Closing this requires a product decision on how
// to identify the requester, so it is carried as-is for now.
type Service struct {
	cfg      *config.Config
	codes    *otp.Store
	sessions *session.Store
	mailer   mail.Sender
}

// NewService wires the flow to its collaborators.
func NewService(cfg *config.Config, codes *otp.Store, sessions *session.Store, mailer mail.Sender) *Service {
	return &Service{
		cfg:      cfg,
		codes:    codes,
		sessions: sessions,
		mailer:   mailer,
	}
}

// SubmitPassword verifies the administrator credential and, on success,
// issues a one-time code and mails it to the admin address. A failed mail
// dispatch rolls the issued code back so no half-open phase remains.
func (s *Service) SubmitPassword(ctx context.Context, email, password string) error {
	if email != s.cfg.AdminEmail || !s.cfg.VerifyPassword(password) {
		return ErrUnauthorized
	}

	code := s.codes.Issue()
	obs.CodesIssued.Inc()

	if err := s.mailer.Send(ctx, s.cfg.AdminEmail, mailSubject, code); err != nil {
		s.codes.Invalidate(code)
		obs.MailFailures.Inc()
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}
	return nil
}

// SubmitCode consumes the one-time code and, when it was live, mints a
// session token for the caller's cookie.
func (s *Service) SubmitCode(ctx context.Context, code string) (string, error) {
	if !s.codes.Validate(code) {
		obs.CodeValidations.WithLabelValues("rejected").Inc()
		return "", ErrUnauthorized
	}
	obs.CodeValidations.WithLabelValues("ok").Inc()
	return s.sessions.Create(), nil
}
