// Package otp implements the one-time-code lifecycle used to verify control
// of an email address during signup: issue a 6-digit code, deliver it by
// mail, verify a submitted code, and purge stale records.
//
// The service holds no in-process state — every record lives in the store,
// so any number of requests may run through it concurrently.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ashif1996/recipe-nest/internal/domain"
)

// DefaultTTL is the code lifetime: two minutes, as promised in the email body.
const DefaultTTL = 120 * time.Second

// DefaultSendTimeout bounds the SMTP round trip so a hung mail provider
// cannot stall issuance indefinitely.
const DefaultSendTimeout = 10 * time.Second

// Store is the persistence the lifecycle needs. Records are immutable:
// every transition is a delete.
type Store interface {
	// Replace removes all records for rec.Email and inserts rec.
	Replace(ctx context.Context, rec *domain.OTPRecord) error
	LatestByEmail(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string, createdAt int64) error
	DeleteAllByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, before time.Time) error
}

// Mailer delivers the code to the user.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type Service interface {
	// Issue generates, stores and emails a fresh code for the address.
	// Storage problems wrap domain.ErrStorage, delivery problems wrap
	// domain.ErrDelivery; issuance is not complete unless both succeeded.
	Issue(ctx context.Context, email string) error

	// Verify checks a submitted code against the most recent record and
	// returns one of the four domain.OTPStatus outcomes. A non-nil error
	// means the store could not be consulted, not that the code was wrong.
	Verify(ctx context.Context, email, code string) (domain.OTPStatus, error)

	// CleanupExpired removes every expired record across all emails.
	CleanupExpired(ctx context.Context) error
}

type ServiceDeps struct {
	Store       Store
	Mailer      Mailer
	TTL         time.Duration
	SendTimeout time.Duration
}

type service struct {
	store       Store
	mailer      Mailer
	ttl         time.Duration
	sendTimeout time.Duration
}

func NewService(d ServiceDeps) Service {
	if d.TTL <= 0 {
		d.TTL = DefaultTTL
	}
	if d.SendTimeout <= 0 {
		d.SendTimeout = DefaultSendTimeout
	}
	return &service{
		store:       d.Store,
		mailer:      d.Mailer,
		ttl:         d.TTL,
		sendTimeout: d.SendTimeout,
	}
}

// GenerateCode returns a 6-digit code drawn uniformly from [100000, 999999]
// using a cryptographically strong source.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func (s *service) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	// Housekeeping sweep before each issuance. A failed sweep must not block
	// handing out a new code — the stale records it would have removed are
	// already unverifiable.
	if err := s.store.DeleteExpired(ctx, time.Now()); err != nil {
		slog.Warn("otp cleanup sweep failed, continuing with issuance", "err", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}

	now := time.Now()
	rec := &domain.OTPRecord{
		Email:     email,
		Code:      code,
		CreatedAt: now.UnixNano(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	if err := s.store.Replace(ctx, rec); err != nil {
		slog.Error("failed to store otp code", "email", email, "err", err)
		return fmt.Errorf("store otp code: %w", domain.ErrStorage)
	}

	// If delivery fails the stored record is orphaned; it simply expires.
	if err := s.send(ctx, email, code); err != nil {
		slog.Error("failed to deliver otp code", "email", email, "err", err)
		return fmt.Errorf("send otp code: %w", domain.ErrDelivery)
	}
	return nil
}

func (s *service) send(ctx context.Context, email, code string) error {
	subject := "OTP Code For RecipeNest Registration"
	body := fmt.Sprintf(
		"<p>Your OTP is: <strong>%s</strong>. It will expire in %s. Please do not share this code with anyone.</p>",
		code, humanTTL(s.ttl),
	)

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.mailer.SendEmail(email, subject, body) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *service) Verify(ctx context.Context, email, code string) (domain.OTPStatus, error) {
	email = normalizeEmail(email)

	rec, err := s.store.LatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.OTPNotFound, nil
		}
		return "", fmt.Errorf("load otp record: %w", domain.ErrStorage)
	}

	if time.Now().Unix() > rec.ExpiresAt {
		// Consume the dead record; the sweep picks it up if this fails.
		if err := s.store.Delete(ctx, rec.Email, rec.CreatedAt); err != nil {
			slog.Warn("failed to delete expired otp record", "email", email, "err", err)
		}
		return domain.OTPExpired, nil
	}

	// Exact string match against what was stored. The submitted code is
	// deliberately not normalized. A mismatch leaves the record in place so
	// the user can retry within the TTL window.
	if code != rec.Code {
		return domain.OTPInvalid, nil
	}

	// Delete all records for the email, not just the matched one, so the
	// code cannot be replayed and leftover duplicates are purged with it.
	if err := s.store.DeleteAllByEmail(ctx, email); err != nil {
		slog.Warn("failed to delete consumed otp records", "email", email, "err", err)
	}
	return domain.OTPVerified, nil
}

func (s *service) CleanupExpired(ctx context.Context) error {
	if err := s.store.DeleteExpired(ctx, time.Now()); err != nil {
		return fmt.Errorf("cleanup expired otp codes: %w", domain.ErrStorage)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// humanTTL renders the TTL for the email body: "2 minutes", "90 seconds".
func humanTTL(ttl time.Duration) string {
	if ttl%time.Minute == 0 {
		m := int(ttl / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return fmt.Sprintf("%d seconds", int(ttl/time.Second))
}
