package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// reissueCooldown throttles back-to-back issues for the same (phone, purpose).
const reissueCooldown = 60 * time.Second

// maxTTL caps the lifetime a caller may request; the issue endpoint is
// public, so client-supplied TTLs are clamped rather than trusted.
const maxTTL = 30 * time.Minute

// opTimeout is the hard deadline on a verification; blowing it surfaces
// Timeout to the caller.
const opTimeout = 30 * time.Second

// Sender delivers the code to the phone. The SMS gateway is an external
// collaborator; deployments plug in their client, tests and dev use the
// logging fallback.
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

type logSender struct {
	logger *zap.Logger
}

func (s *logSender) Send(ctx context.Context, phone, code string) error {
	s.logger.Info("otp issued (no SMS gateway configured)", zap.String("phone", phone))
	return nil
}

// NewLogSender is the default Sender when no gateway is wired.
func NewLogSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

type OTPService interface {
	Issue(ctx context.Context, phone string, purpose Purpose, ttl time.Duration) (string, error)
	Verify(ctx context.Context, phone string, purpose Purpose, code string) error
	Consume(ctx context.Context, phone string, purpose Purpose, code string) error
	ReapExpired(ctx context.Context) (int64, error)
}

type OTPServiceImpl struct {
	Repo   OTPRepository
	Sender Sender
	Logger *zap.Logger

	codeLength  int
	defaultTTL  time.Duration
	maxAttempts int

	now func() time.Time
}

func NewOTPService(repo OTPRepository, sender Sender, cfg *config.Config, logger *zap.Logger) OTPService {
	return &OTPServiceImpl{
		Repo:        repo,
		Sender:      sender,
		Logger:      logger,
		codeLength:  cfg.OTPLength,
		defaultTTL:  cfg.OTPTTL,
		maxAttempts: cfg.OTPMaxAttempts,
		now:         time.Now,
	}
}

func (s *OTPServiceImpl) Issue(ctx context.Context, phone string, purpose Purpose, ttl time.Duration) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", apperrors.Validation("phone number is required")
	}
	if !ValidPurpose(purpose) {
		return "", apperrors.Validation("unknown otp purpose")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	if ttl > maxTTL {
		ttl = maxTTL
	}

	now := s.now()

	if existing, err := s.Repo.FindLatest(ctx, phone, purpose); err == nil {
		if !existing.Verified && now.Sub(existing.CreatedAt) < reissueCooldown {
			return "", apperrors.Validation("please wait before requesting another code")
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	code, err := generateCode(s.codeLength)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	record := &OTP{
		ID:          primitive.NewObjectID(),
		PublicID:    uuid.NewString(),
		PhoneNumber: phone,
		Code:        code,
		Purpose:     purpose,
		Attempts:    0,
		Verified:    false,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}

	if err := s.Repo.Supersede(ctx, record); err != nil {
		return "", apperrors.Internal(err)
	}

	if err := s.Sender.Send(ctx, phone, code); err != nil {
		s.Logger.Error("otp delivery failed", zap.Error(err), zap.String("phone", phone))
	}

	return record.PublicID, nil
}

func (s *OTPServiceImpl) Verify(ctx context.Context, phone string, purpose Purpose, code string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return wrapTimeout(s.verify(ctx, phone, purpose, code))
}

func (s *OTPServiceImpl) verify(ctx context.Context, phone string, purpose Purpose, code string) error {
	record, err := s.Repo.FindLatest(ctx, phone, purpose)
	if err != nil {
		return err
	}

	now := s.now()
	if !record.ExpiresAt.After(now) {
		return apperrors.ErrOtpExpired
	}
	if record.Verified {
		// A code verifies exactly once; the spent record only lingers so
		// the reissue cooldown can see it.
		return apperrors.ErrNotFound
	}
	if record.Attempts >= s.maxAttempts {
		return apperrors.ErrOtpExhausted
	}
	if record.Code != code {
		// The counter advances even if the caller abandons the response.
		if err := s.Repo.IncAttempts(ctx, record.ID); err != nil {
			s.Logger.Error("otp attempt bookkeeping", zap.Error(err))
		}
		return apperrors.ErrOtpMismatch
	}

	// The verified record stays until TTL so an immediate re-issue for the
	// same (phone, purpose) cannot be replayed.
	return s.Repo.MarkVerified(ctx, record.ID)
}

// Consume verifies and deletes in one step, for exactly-once flows such as
// order placement. A second consume of the same code returns NotFound.
func (s *OTPServiceImpl) Consume(ctx context.Context, phone string, purpose Purpose, code string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return wrapTimeout(s.consume(ctx, phone, purpose, code))
}

func (s *OTPServiceImpl) consume(ctx context.Context, phone string, purpose Purpose, code string) error {
	now := s.now()
	err := s.Repo.ConsumeMatch(ctx, phone, purpose, code, now, s.maxAttempts)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	// Classify the failure for the caller.
	record, ferr := s.Repo.FindLatest(ctx, phone, purpose)
	if ferr != nil {
		return apperrors.ErrNotFound
	}
	if !record.ExpiresAt.After(now) {
		return apperrors.ErrOtpExpired
	}
	if record.Attempts >= s.maxAttempts {
		return apperrors.ErrOtpExhausted
	}
	if err := s.Repo.IncAttempts(ctx, record.ID); err != nil {
		s.Logger.Error("otp attempt bookkeeping", zap.Error(err))
	}
	return apperrors.ErrOtpMismatch
}

// wrapTimeout converts a blown deadline into the Timeout error; all other
// errors pass through.
func wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrTimeout
	}
	return err
}

// ReapExpired is the scheduler fallback behind the TTL index.
func (s *OTPServiceImpl) ReapExpired(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpired(ctx, s.now())
}

func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
