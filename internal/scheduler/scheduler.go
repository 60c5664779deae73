package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/features/otp"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/stock"
)

const jobTimeout = 5 * time.Minute

// Scheduler owns the recurring background jobs: the daily lot-expiry sweep
// and the hourly cleanup of one-time codes.
type Scheduler struct {
	cron   *cron.Cron
	stock  stock.StockService
	otp    otp.OTPService
	logger *zap.Logger
}

func NewScheduler(lc fx.Lifecycle, stockSv stock.StockService, otpSv otp.OTPService, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:   cron.New(),
		stock:  stockSv,
		otp:    otpSv,
		logger: logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.start()
		},
		OnStop: func(ctx context.Context) error {
			s.cron.Stop()
			return nil
		},
	})
	return s
}

func (s *Scheduler) start() error {
	if _, err := s.cron.AddFunc("15 0 * * *", s.sweepExpiredLots); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.reapExpiredCodes); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started")
	return nil
}

func (s *Scheduler) sweepExpiredLots() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.stock.SweepExpiredLots(ctx, time.Now()); err != nil {
		s.logger.Error("lot expiry sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) reapExpiredCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.otp.ReapExpired(ctx)
	if err != nil {
		s.logger.Error("otp cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired otp records removed", zap.Int64("count", removed))
	}
}
