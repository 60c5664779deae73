package otp

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

type fakeOTPRepo struct {
	records []*OTP
	// findErr simulates a datastore failure on lookups.
	findErr error
}

func (r *fakeOTPRepo) Supersede(ctx context.Context, record *OTP) error {
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.PhoneNumber == record.PhoneNumber && rec.Purpose == record.Purpose && !rec.Verified {
			continue
		}
		kept = append(kept, rec)
	}
	r.records = append(kept, record)
	return nil
}

func (r *fakeOTPRepo) FindLatest(ctx context.Context, phone string, purpose Purpose) (*OTP, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var latest *OTP
	for _, rec := range r.records {
		if rec.PhoneNumber != phone || rec.Purpose != purpose {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeOTPRepo) IncAttempts(ctx context.Context, id primitive.ObjectID) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Attempts++
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeOTPRepo) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	for _, rec := range r.records {
		if rec.ID == id {
			rec.Verified = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeOTPRepo) ConsumeMatch(ctx context.Context, phone string, purpose Purpose, code string, now time.Time, maxAttempts int) error {
	if r.findErr != nil {
		return r.findErr
	}
	for i, rec := range r.records {
		if rec.PhoneNumber == phone && rec.Purpose == purpose && rec.Code == code &&
			rec.ExpiresAt.After(now) && rec.Attempts < maxAttempts {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeOTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.ExpiresAt.After(now) {
			kept = append(kept, rec)
		} else {
			removed++
		}
	}
	r.records = kept
	return removed, nil
}

func (r *fakeOTPRepo) EnsureIndexes(ctx context.Context) error { return nil }

type captureSender struct {
	lastCode string
}

func (s *captureSender) Send(ctx context.Context, phone, code string) error {
	s.lastCode = code
	return nil
}

func newTestOTPService(repo *fakeOTPRepo, sender Sender, clock *time.Time) *OTPServiceImpl {
	return &OTPServiceImpl{
		Repo:        repo,
		Sender:      sender,
		Logger:      zap.NewNop(),
		codeLength:  6,
		defaultTTL:  5 * time.Minute,
		maxAttempts: 3,
		now:         func() time.Time { return *clock },
	}
}

func TestIssueAndVerify(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	publicID, err := svc.Issue(ctx, "5550001", PurposeVerification, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if publicID == "" {
		t.Fatal("expected a public id")
	}
	if len(sender.lastCode) != 6 {
		t.Fatalf("delivered code %q, want 6 digits", sender.lastCode)
	}

	if err := svc.Verify(ctx, "5550001", PurposeVerification, sender.lastCode); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !repo.records[0].Verified {
		t.Error("record not marked verified")
	}
}

func TestVerifyWrongCodeExhausts(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeVerification, 0); err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.Verify(ctx, "5550001", PurposeVerification, "000000"); !errors.Is(err, apperrors.ErrOtpMismatch) {
			t.Fatalf("attempt %d: got %v, want mismatch", i+1, err)
		}
	}

	// Attempts are spent; even the right code is refused now.
	if err := svc.Verify(ctx, "5550001", PurposeVerification, sender.lastCode); !errors.Is(err, apperrors.ErrOtpExhausted) {
		t.Fatalf("got %v, want exhausted", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeVerification, 2*time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = clock.Add(3 * time.Minute)
	if err := svc.Verify(ctx, "5550001", PurposeVerification, sender.lastCode); !errors.Is(err, apperrors.ErrOtpExpired) {
		t.Fatalf("got %v, want expired", err)
	}
}

func TestConsumeIsExactlyOnce(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeOrder, 0); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Consume(ctx, "5550001", PurposeOrder, sender.lastCode); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := svc.Consume(ctx, "5550001", PurposeOrder, sender.lastCode); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second consume: got %v, want not found", err)
	}
}

func TestVerifySucceedsExactlyOnce(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeVerification, 0); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Verify(ctx, "5550001", PurposeVerification, sender.lastCode); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// The spent record lingers until TTL but never verifies again.
	if err := svc.Verify(ctx, "5550001", PurposeVerification, sender.lastCode); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second verify: got %v, want not found", err)
	}
}

func TestIssueClampsRequestedTTL(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeVerification, 365*24*time.Hour); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := repo.records[0].ExpiresAt; got.After(clock.Add(maxTTL)) {
		t.Errorf("expires at %v, want at most %v", got, clock.Add(maxTTL))
	}
}

func TestVerifySurfacesTimeout(t *testing.T) {
	repo := &fakeOTPRepo{findErr: context.DeadlineExceeded}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, &captureSender{}, &clock)

	if err := svc.Verify(context.Background(), "5550001", PurposeVerification, "123456"); !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("verify: got %v, want timeout", err)
	}
	if err := svc.Consume(context.Background(), "5550001", PurposeOrder, "123456"); !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("consume: got %v, want timeout", err)
	}
}

func TestReissueCooldownAndSupersede(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeLogin, 0); err != nil {
		t.Fatalf("issue: %v", err)
	}
	firstCode := sender.lastCode

	// Immediate re-issue is throttled.
	if _, err := svc.Issue(ctx, "5550001", PurposeLogin, 0); err == nil {
		t.Fatal("expected cooldown rejection")
	}

	clock = clock.Add(reissueCooldown + time.Second)
	if _, err := svc.Issue(ctx, "5550001", PurposeLogin, 0); err != nil {
		t.Fatalf("reissue: %v", err)
	}

	// The first code is superseded and no longer verifies.
	if err := svc.Verify(ctx, "5550001", PurposeLogin, firstCode); err == nil && firstCode != sender.lastCode {
		t.Error("superseded code still verifies")
	}
	if len(repo.records) != 1 {
		t.Errorf("records = %d, want 1 after supersede", len(repo.records))
	}
}

func TestIssueValidation(t *testing.T) {
	repo := &fakeOTPRepo{}
	clock := time.Now()
	svc := newTestOTPService(repo, &captureSender{}, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "", PurposeLogin, 0); err == nil {
		t.Error("empty phone accepted")
	}
	if _, err := svc.Issue(ctx, "5550001", Purpose("bogus"), 0); err == nil {
		t.Error("unknown purpose accepted")
	}
}

func TestReapExpired(t *testing.T) {
	repo := &fakeOTPRepo{}
	sender := &captureSender{}
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestOTPService(repo, sender, &clock)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "5550001", PurposeLogin, time.Minute); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Issue(ctx, "5550002", PurposeLogin, time.Hour); err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = clock.Add(10 * time.Minute)
	removed, err := svc.ReapExpired(ctx)
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
