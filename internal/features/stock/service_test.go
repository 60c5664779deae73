package stock

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
)

type monthKey struct {
	product primitive.ObjectID
	year    int
	month   int
}

type fakeStockRepo struct {
	records map[monthKey]*MonthlyStock
	// failWrites forces every versioned write to report a lost race.
	failWrites bool
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{records: map[monthKey]*MonthlyStock{}}
}

func (r *fakeStockRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeStockRepo) Insert(ctx context.Context, m *MonthlyStock) error {
	key := monthKey{m.ProductID, m.Year, m.Month}
	if _, ok := r.records[key]; ok {
		return apperrors.ErrConflict
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.Version = 1
	copied := cloneMonth(m)
	r.records[key] = copied
	return nil
}

func (r *fakeStockRepo) Get(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	m, ok := r.records[monthKey{productID, year, month}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneMonth(m), nil
}

func (r *fakeStockRepo) LatestBefore(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	var best *MonthlyStock
	for key, m := range r.records {
		if key.product != productID {
			continue
		}
		if key.year > year || (key.year == year && key.month >= month) {
			continue
		}
		if best == nil || key.year > best.Year || (key.year == best.Year && key.month > best.Month) {
			best = m
		}
	}
	if best == nil {
		return nil, apperrors.ErrNotFound
	}
	return cloneMonth(best), nil
}

func (r *fakeStockRepo) ReplaceVersioned(ctx context.Context, m *MonthlyStock) (bool, error) {
	if r.failWrites {
		return false, nil
	}
	key := monthKey{m.ProductID, m.Year, m.Month}
	stored, ok := r.records[key]
	if !ok || stored.Version != m.Version {
		return false, nil
	}
	m.Version++
	r.records[key] = cloneMonth(m)
	return true, nil
}

func (r *fakeStockRepo) ListYear(ctx context.Context, productID primitive.ObjectID, year int) ([]MonthlyStock, error) {
	var out []MonthlyStock
	for month := 1; month <= 12; month++ {
		if m, ok := r.records[monthKey{productID, year, month}]; ok {
			out = append(out, *cloneMonth(m))
		}
	}
	return out, nil
}

func (r *fakeStockRepo) Years(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	seen := map[int]bool{}
	var out []int
	for key := range r.records {
		if key.product == productID && !seen[key.year] {
			seen[key.year] = true
			out = append(out, key.year)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (r *fakeStockRepo) ListByTheaterMonth(ctx context.Context, theaterID primitive.ObjectID, year, month int) ([]MonthlyStock, error) {
	var out []MonthlyStock
	for key, m := range r.records {
		if key.year == year && key.month == month && m.TheaterID == theaterID {
			out = append(out, *cloneMonth(m))
		}
	}
	return out, nil
}

func (r *fakeStockRepo) ProductsWithExpiredLots(ctx context.Context, year, month int, cutoff time.Time) ([]MonthlyStock, error) {
	var out []MonthlyStock
	for key, m := range r.records {
		if key.year != year || key.month != month {
			continue
		}
		for _, lot := range m.StockDetails {
			if lot.ExpiresAt != nil && !lot.ExpiresAt.After(cutoff) && lot.Remaining > 0 {
				out = append(out, *cloneMonth(m))
				break
			}
		}
	}
	return out, nil
}

func cloneMonth(m *MonthlyStock) *MonthlyStock {
	copied := *m
	copied.StockDetails = append([]StockLot(nil), m.StockDetails...)
	return &copied
}

func newTestStockService(repo StockRepository) *StockServiceImpl {
	return &StockServiceImpl{repo: repo, logger: zap.NewNop(), now: time.Now}
}

func checkInvariant(t *testing.T, m *MonthlyStock) {
	t.Helper()
	var lotRemaining int64
	for _, lot := range m.StockDetails {
		if !lot.FromOldStock {
			lotRemaining += lot.Remaining
		}
	}
	want := m.OpeningOldStock - m.UsedOldStock - m.ExpiredOldStock + lotRemaining
	if m.ClosingBalance != want {
		t.Fatalf("invariant broken: closing=%d, opening=%d used=%d expired=%d lots=%d",
			m.ClosingBalance, m.OpeningOldStock, m.UsedOldStock, m.ExpiredOldStock, lotRemaining)
	}
}

var (
	productA  = primitive.NewObjectID()
	theaterA  = primitive.NewObjectID()
	march10   = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	march20   = time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	april5    = time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
)

func TestReceiptThenSaleKeepsInvariant(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	m, err := svc.RecordReceipt(ctx, ReceiptInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 100, UnitCost: 2.5,
	})
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if m.ClosingBalance != 100 {
		t.Fatalf("closing after receipt = %d, want 100", m.ClosingBalance)
	}

	m, err = svc.RecordSale(ctx, SaleInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 30,
	})
	if err != nil {
		t.Fatalf("sale: %v", err)
	}
	if m.Sales != 30 || m.ClosingBalance != 70 {
		t.Errorf("sales=%d closing=%d, want 30/70", m.Sales, m.ClosingBalance)
	}
	checkInvariant(t, m)
}

func TestSaleDrawsOpeningFirstThenOldestLots(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	// Seed a month that has both a carry-forward portion and two dated lots.
	seed := &MonthlyStock{
		ProductID: productA, TheaterID: theaterA,
		Year: 2026, Month: 3,
		OpeningOldStock: 20,
		StockDetails: []StockLot{
			{LotDate: march20, Quantity: 50, Remaining: 50},
			{LotDate: march10, Quantity: 40, Remaining: 40},
		},
	}
	sortLots(seed.StockDetails)
	seed.recompute()
	if err := repo.Insert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m, err := svc.RecordSale(ctx, SaleInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march20, Quantity: 50,
	})
	if err != nil {
		t.Fatalf("sale: %v", err)
	}

	// 20 from opening, then 30 from the March 10 lot; the March 20 lot is
	// untouched.
	if m.UsedOldStock != 20 {
		t.Errorf("usedOldStock = %d, want 20", m.UsedOldStock)
	}
	if m.StockDetails[0].Remaining != 10 {
		t.Errorf("oldest lot remaining = %d, want 10", m.StockDetails[0].Remaining)
	}
	if m.StockDetails[1].Remaining != 50 {
		t.Errorf("newest lot remaining = %d, want 50", m.StockDetails[1].Remaining)
	}
	checkInvariant(t, m)
}

func TestSaleInsufficientStockLeavesLedgerUnchanged(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	if _, err := svc.RecordReceipt(ctx, ReceiptInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 10,
	}); err != nil {
		t.Fatalf("receipt: %v", err)
	}

	_, err := svc.RecordSale(ctx, SaleInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 11,
	})
	if !errors.Is(err, apperrors.ErrInsufficientStock) {
		t.Fatalf("got %v, want insufficient stock", err)
	}

	m, err := repo.Get(ctx, productA, 2026, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.Sales != 0 || m.ClosingBalance != 10 {
		t.Errorf("ledger changed by rejected sale: sales=%d closing=%d", m.Sales, m.ClosingBalance)
	}
}

func TestRolloverCarriesClosingAndDatedLots(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	expiry := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	if _, err := svc.RecordReceipt(ctx, ReceiptInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 100, ExpiresAt: &expiry,
	}); err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if _, err := svc.RecordSale(ctx, SaleInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march20, Quantity: 40,
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}

	april, err := svc.Rollover(ctx, productA, theaterA, 2026, 4)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if april.OpeningOldStock != 60 {
		t.Errorf("opening = %d, want previous closing 60", april.OpeningOldStock)
	}
	if len(april.StockDetails) != 1 || !april.StockDetails[0].FromOldStock {
		t.Fatalf("carried lots = %+v, want one fromOldStock lot", april.StockDetails)
	}
	if april.StockDetails[0].Remaining != 60 {
		t.Errorf("carried remaining = %d, want 60", april.StockDetails[0].Remaining)
	}
	if april.ClosingBalance != 60 {
		t.Errorf("closing = %d, want 60", april.ClosingBalance)
	}
	checkInvariant(t, april)

	// A second rollover returns the same record instead of resetting it.
	again, err := svc.Rollover(ctx, productA, theaterA, 2026, 4)
	if err != nil {
		t.Fatalf("second rollover: %v", err)
	}
	if again.ID != april.ID {
		t.Error("rollover is not idempotent")
	}
}

func TestRolloverWithoutHistoryStartsEmpty(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)

	m, err := svc.Rollover(context.Background(), productA, theaterA, 2026, 1)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if m.OpeningOldStock != 0 || m.ClosingBalance != 0 || len(m.StockDetails) != 0 {
		t.Errorf("fresh month not empty: %+v", m)
	}
}

func TestExpireLotsCurrentAndCarried(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	carriedExpiry := april5
	currentExpiry := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	seed := &MonthlyStock{
		ProductID: productA, TheaterID: theaterA,
		Year: 2026, Month: 4,
		OpeningOldStock: 30,
		StockDetails: []StockLot{
			{LotDate: march10, Quantity: 30, Remaining: 30, ExpiresAt: &carriedExpiry, FromOldStock: true},
			{LotDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Quantity: 25, Remaining: 25, ExpiresAt: &currentExpiry},
		},
	}
	sortLots(seed.StockDetails)
	seed.recompute()
	if err := repo.Insert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	m, err := svc.ExpireLots(ctx, productA, theaterA, time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expire: %v", err)
	}

	if m.ExpiredOldStock != 30 {
		t.Errorf("expiredOldStock = %d, want 30", m.ExpiredOldStock)
	}
	for _, lot := range m.StockDetails {
		if lot.Remaining != 0 {
			t.Errorf("lot %v still has %d remaining", lot.LotDate, lot.Remaining)
		}
	}
	if m.ClosingBalance != 0 {
		t.Errorf("closing = %d, want 0", m.ClosingBalance)
	}
	checkInvariant(t, m)
}

func TestContentionAfterRetries(t *testing.T) {
	repo := newFakeStockRepo()
	svc := newTestStockService(repo)
	ctx := context.Background()

	if _, err := svc.RecordReceipt(ctx, ReceiptInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 10,
	}); err != nil {
		t.Fatalf("receipt: %v", err)
	}

	repo.failWrites = true
	_, err := svc.RecordSale(ctx, SaleInput{
		ProductID: productA, TheaterID: theaterA,
		Date: march10, Quantity: 1,
	})
	if !errors.Is(err, apperrors.ErrContention) {
		t.Fatalf("got %v, want contention", err)
	}
}

func TestRecordValidation(t *testing.T) {
	svc := newTestStockService(newFakeStockRepo())
	ctx := context.Background()

	if _, err := svc.RecordReceipt(ctx, ReceiptInput{ProductID: productA, TheaterID: theaterA, Date: march10, Quantity: 0}); err == nil {
		t.Error("zero quantity receipt accepted")
	}
	if _, err := svc.RecordSale(ctx, SaleInput{ProductID: productA, TheaterID: theaterA, Date: march10, Quantity: -1}); err == nil {
		t.Error("negative quantity sale accepted")
	}
}

func TestLegacyFieldSpellingsDecode(t *testing.T) {
	carry := int64(40)
	used := int64(15)
	sales := int64(25)

	doc := &monthlyStockDoc{
		MonthlyStock: MonthlyStock{
			ProductID: productA,
			Year:      2024,
			Month:     11,
		},
		LegacyCarryForward:     &carry,
		LegacyUsedCarryForward: &used,
		LegacyUsedStock:        &sales,
	}

	m := doc.normalize()
	if m.OpeningOldStock != 40 {
		t.Errorf("openingOldStock = %d, want carryForward 40", m.OpeningOldStock)
	}
	if m.UsedOldStock != 15 {
		t.Errorf("usedOldStock = %d, want usedCarryForward 15", m.UsedOldStock)
	}
	if m.Sales != 25 {
		t.Errorf("sales = %d, want usedStock 25", m.Sales)
	}

	// New spellings win when both are present.
	doc.MonthlyStock.Sales = 99
	if m := doc.normalize(); m.Sales != 99 {
		t.Errorf("sales = %d, new spelling should win", m.Sales)
	}
}
