package stock

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

const (
	maxCASRetries = 3
	opTimeout     = 30 * time.Second
)

type ReceiptInput struct {
	ProductID primitive.ObjectID
	TheaterID primitive.ObjectID
	Date      time.Time
	Quantity  int64
	UnitCost  float64
	ExpiresAt *time.Time
}

type SaleInput struct {
	ProductID primitive.ObjectID
	TheaterID primitive.ObjectID
	Date      time.Time
	Quantity  int64
}

type StockService interface {
	RecordReceipt(ctx context.Context, in ReceiptInput) (*MonthlyStock, error)
	RecordSale(ctx context.Context, in SaleInput) (*MonthlyStock, error)
	ExpireLots(ctx context.Context, productID, theaterID primitive.ObjectID, now time.Time) (*MonthlyStock, error)
	SweepExpiredLots(ctx context.Context, now time.Time) error
	Rollover(ctx context.Context, productID, theaterID primitive.ObjectID, year, month int) (*MonthlyStock, error)
	GetMonth(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error)
	GetYear(ctx context.Context, productID primitive.ObjectID, year int) ([]MonthlyStock, error)
	ListYears(ctx context.Context, productID primitive.ObjectID) ([]int, error)
}

type StockServiceImpl struct {
	repo   StockRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewStockService(repo StockRepository, logger *zap.Logger) StockService {
	return &StockServiceImpl{repo: repo, logger: logger, now: time.Now}
}

// wrapErr converts a blown deadline into the ledger's timeout error; all
// other errors pass through.
func wrapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrTimeout
	}
	return err
}

func (s *StockServiceImpl) RecordReceipt(ctx context.Context, in ReceiptInput) (*MonthlyStock, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result *MonthlyStock
	err := s.mutateMonth(ctx, in.ProductID, in.TheaterID, in.Date.Year(), int(in.Date.Month()), func(m *MonthlyStock) error {
		m.StockDetails = append(m.StockDetails, StockLot{
			LotDate:   in.Date,
			Quantity:  in.Quantity,
			Remaining: in.Quantity,
			UnitCost:  in.UnitCost,
			ExpiresAt: in.ExpiresAt,
		})
		sortLots(m.StockDetails)
		m.recompute()
		result = m
		return nil
	})
	return result, wrapErr(err)
}

func (s *StockServiceImpl) RecordSale(ctx context.Context, in SaleInput) (*MonthlyStock, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result *MonthlyStock
	err := s.mutateMonth(ctx, in.ProductID, in.TheaterID, in.Date.Year(), int(in.Date.Month()), func(m *MonthlyStock) error {
		if m.ClosingBalance < in.Quantity {
			return apperrors.ErrInsufficientStock
		}
		s.drawDown(m, in.Quantity)
		m.Sales += in.Quantity
		m.recompute()
		result = m
		return nil
	})
	return result, wrapErr(err)
}

// drawDown consumes quantity from the carry-forward first, then from this
// month's lots oldest lot-date first. The caller has already checked that
// the closing balance covers the quantity.
func (s *StockServiceImpl) drawDown(m *MonthlyStock, qty int64) {
	fromOpening := m.openingAvailable()
	if fromOpening > qty {
		fromOpening = qty
	}
	if fromOpening > 0 {
		m.UsedOldStock += fromOpening
		qty -= fromOpening
		// Keep the carried lots' bookkeeping in step with the opening
		// counters so expiry never double-counts consumed units.
		reduceLots(m.StockDetails, fromOpening, true)
	}
	if qty > 0 {
		reduceLots(m.StockDetails, qty, false)
	}
}

// reduceLots takes qty out of lots matching the fromOldStock flag, oldest
// lot-date first. Lots are assumed sorted by lot date.
func reduceLots(lots []StockLot, qty int64, fromOldStock bool) {
	for i := range lots {
		if qty == 0 {
			break
		}
		if lots[i].FromOldStock != fromOldStock || lots[i].Remaining == 0 {
			continue
		}
		take := lots[i].Remaining
		if take > qty {
			take = qty
		}
		lots[i].Remaining -= take
		qty -= take
	}
}

func sortLots(lots []StockLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].LotDate.Before(lots[j].LotDate)
	})
}

// ExpireLots zeroes every lot in the product's month whose expiry has
// passed. Expiring a carried lot moves its remaining quantity into
// expiredOldStock, capped at what is still available from the opening.
func (s *StockServiceImpl) ExpireLots(ctx context.Context, productID, theaterID primitive.ObjectID, now time.Time) (*MonthlyStock, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result *MonthlyStock
	err := s.mutateMonth(ctx, productID, theaterID, now.Year(), int(now.Month()), func(m *MonthlyStock) error {
		for i := range m.StockDetails {
			lot := &m.StockDetails[i]
			if lot.ExpiresAt == nil || lot.ExpiresAt.After(now) || lot.Remaining == 0 {
				continue
			}
			if lot.FromOldStock {
				waste := lot.Remaining
				if avail := m.openingAvailable(); waste > avail {
					waste = avail
				}
				m.ExpiredOldStock += waste
			}
			lot.Remaining = 0
		}
		m.recompute()
		result = m
		return nil
	})
	return result, wrapErr(err)
}

// SweepExpiredLots runs ExpireLots over every month record in the current
// period that holds an expired lot with stock remaining. Used by the daily
// scheduler job.
func (s *StockServiceImpl) SweepExpiredLots(ctx context.Context, now time.Time) error {
	records, err := s.repo.ProductsWithExpiredLots(ctx, now.Year(), int(now.Month()), now)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := s.ExpireLots(ctx, rec.ProductID, rec.TheaterID, now); err != nil {
			s.logger.Error("expire sweep failed for product",
				zap.String("product_id", rec.ProductID.Hex()),
				zap.Error(err))
		}
	}
	return nil
}

// Rollover creates the month record for (year, month), seeding its opening
// from the previous record's closing balance and carrying lots with stock
// remaining forward flagged fromOldStock. Safe to call repeatedly; the unique
// (productId, year, month) index makes the create idempotent.
func (s *StockServiceImpl) Rollover(ctx context.Context, productID, theaterID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	m, err := s.ensureMonth(ctx, productID, theaterID, year, month)
	return m, wrapErr(err)
}

func (s *StockServiceImpl) GetMonth(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	return s.repo.Get(ctx, productID, year, month)
}

func (s *StockServiceImpl) GetYear(ctx context.Context, productID primitive.ObjectID, year int) ([]MonthlyStock, error) {
	return s.repo.ListYear(ctx, productID, year)
}

func (s *StockServiceImpl) ListYears(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	return s.repo.Years(ctx, productID)
}

// mutateMonth loads (creating via rollover when absent) the month record,
// applies fn, and writes it back under version CAS, retrying a bounded
// number of times before reporting contention.
func (s *StockServiceImpl) mutateMonth(ctx context.Context, productID, theaterID primitive.ObjectID, year, month int, fn func(*MonthlyStock) error) error {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		m, err := s.ensureMonth(ctx, productID, theaterID, year, month)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		ok, err := s.repo.ReplaceVersioned(ctx, m)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		s.logger.Debug("stock write lost version race, retrying",
			zap.String("product_id", productID.Hex()),
			zap.Int("attempt", attempt+1))
	}
	return apperrors.ErrContention
}

func (s *StockServiceImpl) ensureMonth(ctx context.Context, productID, theaterID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	m, err := s.repo.Get(ctx, productID, year, month)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	fresh := s.seedMonth(ctx, productID, theaterID, year, month)
	if err := s.repo.Insert(ctx, fresh); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Another writer created it first; read theirs.
			return s.repo.Get(ctx, productID, year, month)
		}
		return nil, err
	}
	return fresh, nil
}

// seedMonth builds a new month record from the latest prior month, or an
// empty ledger when the product has no history.
func (s *StockServiceImpl) seedMonth(ctx context.Context, productID, theaterID primitive.ObjectID, year, month int) *MonthlyStock {
	fresh := &MonthlyStock{
		ProductID: productID,
		TheaterID: theaterID,
		Year:      year,
		Month:     month,
	}

	prev, err := s.repo.LatestBefore(ctx, productID, year, month)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("could not read prior month for rollover, starting empty",
				zap.String("product_id", productID.Hex()),
				zap.Error(err))
		}
		fresh.recompute()
		return fresh
	}

	fresh.OpeningOldStock = prev.ClosingBalance
	for _, lot := range prev.StockDetails {
		if lot.Remaining == 0 {
			continue
		}
		carried := lot
		carried.Quantity = lot.Remaining
		carried.FromOldStock = true
		fresh.StockDetails = append(fresh.StockDetails, carried)
	}
	sortLots(fresh.StockDetails)
	fresh.recompute()
	return fresh
}
