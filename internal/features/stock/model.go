package stock

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockLot is one receipt of inventory. Lots carried over from the previous
// month keep their expiry date and are flagged FromOldStock; their remaining
// quantity is part of OpeningOldStock and is never counted again in the
// closing-balance sum.
type StockLot struct {
	LotDate      time.Time  `bson:"lotDate" json:"lot_date"`
	Quantity     int64      `bson:"quantity" json:"quantity"`
	Remaining    int64      `bson:"remaining" json:"remaining"`
	UnitCost     float64    `bson:"unitCost" json:"unit_cost"`
	ExpiresAt    *time.Time `bson:"expiresAt,omitempty" json:"expires_at,omitempty"`
	FromOldStock bool       `bson:"fromOldStock,omitempty" json:"from_old_stock,omitempty"`
}

// MonthlyStock is the per-product, per-month ledger document. The field names
// follow the renamed schema (oldStock, sales); the repository's read adapter
// still accepts the historical carryForward/usedStock spellings.
type MonthlyStock struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"product_id"`
	TheaterID primitive.ObjectID `bson:"theaterId" json:"theater_id"`
	Year      int                `bson:"year" json:"year"`
	Month     int                `bson:"month" json:"month"` // 1..12

	OpeningOldStock int64      `bson:"openingOldStock" json:"opening_old_stock"`
	UsedOldStock    int64      `bson:"usedOldStock" json:"used_old_stock"`
	ExpiredOldStock int64      `bson:"expiredOldStock" json:"expired_old_stock"`
	Sales           int64      `bson:"sales" json:"sales"`
	StockDetails    []StockLot `bson:"stockDetails" json:"stock_details"`
	ClosingBalance  int64      `bson:"closingBalance" json:"closing_balance"`

	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// openingAvailable is the unsold, unexpired portion of the carry-forward.
func (m *MonthlyStock) openingAvailable() int64 {
	return m.OpeningOldStock - m.UsedOldStock - m.ExpiredOldStock
}

// receiptsTotal sums quantities received this month.
func (m *MonthlyStock) receiptsTotal() int64 {
	var total int64
	for _, lot := range m.StockDetails {
		if !lot.FromOldStock {
			total += lot.Quantity
		}
	}
	return total
}

// recompute restores the ledger invariant:
// closing = opening − used − expired + Σ remaining of this month's lots.
func (m *MonthlyStock) recompute() {
	var lotRemaining int64
	for _, lot := range m.StockDetails {
		if !lot.FromOldStock {
			lotRemaining += lot.Remaining
		}
	}
	m.ClosingBalance = m.openingAvailable() + lotRemaining
}
