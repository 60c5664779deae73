package stock

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"
)

type StockRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, m *MonthlyStock) error
	Get(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error)
	LatestBefore(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error)
	ReplaceVersioned(ctx context.Context, m *MonthlyStock) (bool, error)
	ListYear(ctx context.Context, productID primitive.ObjectID, year int) ([]MonthlyStock, error)
	Years(ctx context.Context, productID primitive.ObjectID) ([]int, error)
	ListByTheaterMonth(ctx context.Context, theaterID primitive.ObjectID, year, month int) ([]MonthlyStock, error)
	ProductsWithExpiredLots(ctx context.Context, year, month int, cutoff time.Time) ([]MonthlyStock, error)
}

type StockRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewStockRepository(db *database.MongodbDB) StockRepository {
	return &StockRepositoryImpl{Collection: db.DB.Collection("monthly_stock")}
}

func (r *StockRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "productId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "month", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "theaterId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "month", Value: 1},
			},
		},
	})
	return err
}

// monthlyStockDoc widens the ledger with the historical field spellings so
// documents written before the rename still decode. Only the new names are
// ever written back.
type monthlyStockDoc struct {
	MonthlyStock `bson:",inline"`

	LegacyCarryForward        *int64 `bson:"carryForward,omitempty"`
	LegacyUsedCarryForward    *int64 `bson:"usedCarryForward,omitempty"`
	LegacyExpiredCarryForward *int64 `bson:"expiredCarryForward,omitempty"`
	LegacyUsedStock           *int64 `bson:"usedStock,omitempty"`
}

// normalize folds legacy spellings into the current fields when the current
// ones are absent.
func (d *monthlyStockDoc) normalize() *MonthlyStock {
	m := d.MonthlyStock
	if m.OpeningOldStock == 0 && d.LegacyCarryForward != nil {
		m.OpeningOldStock = *d.LegacyCarryForward
	}
	if m.UsedOldStock == 0 && d.LegacyUsedCarryForward != nil {
		m.UsedOldStock = *d.LegacyUsedCarryForward
	}
	if m.ExpiredOldStock == 0 && d.LegacyExpiredCarryForward != nil {
		m.ExpiredOldStock = *d.LegacyExpiredCarryForward
	}
	if m.Sales == 0 && d.LegacyUsedStock != nil {
		m.Sales = *d.LegacyUsedStock
	}
	return &m
}

func (r *StockRepositoryImpl) Insert(ctx context.Context, m *MonthlyStock) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	m.Version = 1
	_, err := r.Collection.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *StockRepositoryImpl) Get(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	var doc monthlyStockDoc
	err := r.Collection.FindOne(ctx, bson.M{
		"productId": productID,
		"year":      year,
		"month":     month,
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.normalize(), nil
}

// LatestBefore returns the most recent month record strictly earlier than the
// given year/month, or ErrNotFound when the product has no prior history.
func (r *StockRepositoryImpl) LatestBefore(ctx context.Context, productID primitive.ObjectID, year, month int) (*MonthlyStock, error) {
	filter := bson.M{
		"productId": productID,
		"$or": []bson.M{
			{"year": bson.M{"$lt": year}},
			{"year": year, "month": bson.M{"$lt": month}},
		},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})

	var doc monthlyStockDoc
	err := r.Collection.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.normalize(), nil
}

// ReplaceVersioned writes the document only if its stored version still
// matches; returns false on a lost race.
func (r *StockRepositoryImpl) ReplaceVersioned(ctx context.Context, m *MonthlyStock) (bool, error) {
	expected := m.Version
	m.Version = expected + 1
	m.UpdatedAt = time.Now()

	res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": m.ID, "version": expected}, m)
	if err != nil {
		m.Version = expected
		return false, err
	}
	if res.MatchedCount == 0 {
		m.Version = expected
		return false, nil
	}
	return true, nil
}

func (r *StockRepositoryImpl) ListYear(ctx context.Context, productID primitive.ObjectID, year int) ([]MonthlyStock, error) {
	cursor, err := r.Collection.Find(ctx,
		bson.M{"productId": productID, "year": year},
		options.Find().SetSort(bson.D{{Key: "month", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	return r.decodeAll(ctx, cursor)
}

// Years lists the distinct years the product has ledger records for,
// ascending.
func (r *StockRepositoryImpl) Years(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	raw, err := r.Collection.Distinct(ctx, "year", bson.M{"productId": productID})
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(raw))
	for _, v := range raw {
		switch y := v.(type) {
		case int32:
			years = append(years, int(y))
		case int64:
			years = append(years, int(y))
		case int:
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}

func (r *StockRepositoryImpl) ListByTheaterMonth(ctx context.Context, theaterID primitive.ObjectID, year, month int) ([]MonthlyStock, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{
		"theaterId": theaterID,
		"year":      year,
		"month":     month,
	})
	if err != nil {
		return nil, err
	}
	return r.decodeAll(ctx, cursor)
}

// ProductsWithExpiredLots finds month records holding at least one lot whose
// expiry has passed and which still has quantity remaining.
func (r *StockRepositoryImpl) ProductsWithExpiredLots(ctx context.Context, year, month int, cutoff time.Time) ([]MonthlyStock, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{
		"year":  year,
		"month": month,
		"stockDetails": bson.M{"$elemMatch": bson.M{
			"expiresAt": bson.M{"$lte": cutoff},
			"remaining": bson.M{"$gt": 0},
		}},
	})
	if err != nil {
		return nil, err
	}
	return r.decodeAll(ctx, cursor)
}

func (r *StockRepositoryImpl) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]MonthlyStock, error) {
	defer cursor.Close(ctx)

	var out []MonthlyStock
	for cursor.Next(ctx) {
		var doc monthlyStockDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.normalize())
	}
	return out, cursor.Err()
}
