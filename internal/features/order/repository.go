package order

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"
)

type OrderRepository interface {
	EnsureIndexes(ctx context.Context) error
	NextOrderNumber(ctx context.Context, theaterID primitive.ObjectID) (int64, error)
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	List(ctx context.Context, theaterID primitive.ObjectID, status *Status, limit int64) ([]Order, error)
	ListByPhone(ctx context.Context, theaterID primitive.ObjectID, phone string) ([]Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to Status) (*Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID, paymentRef string) (*Order, error)
}

type OrderRepositoryImpl struct {
	Orders   *mongo.Collection
	Counters *mongo.Collection
}

func NewOrderRepository(db *database.MongodbDB) OrderRepository {
	return &OrderRepositoryImpl{
		Orders:   db.DB.Collection("orders"),
		Counters: db.DB.Collection("counters"),
	}
}

func (r *OrderRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "theater_id", Value: 1},
				{Key: "order_number", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "theater_id", Value: 1},
				{Key: "phone_number", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	})
	return err
}

// NextOrderNumber atomically increments the per-theater counter document,
// creating it on first use.
func (r *OrderRepositoryImpl) NextOrderNumber(ctx context.Context, theaterID primitive.ObjectID) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.Counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "orders:" + theaterID.Hex()},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, o *Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	_, err := r.Orders.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *OrderRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var o Order
	err := r.Orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepositoryImpl) List(ctx context.Context, theaterID primitive.ObjectID, status *Status, limit int64) ([]Order, error) {
	filter := bson.M{"theater_id": theaterID}
	if status != nil {
		filter["status"] = *status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.Orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepositoryImpl) ListByPhone(ctx context.Context, theaterID primitive.ObjectID, phone string) ([]Order, error) {
	cursor, err := r.Orders.Find(ctx,
		bson.M{"theater_id": theaterID, "phone_number": phone},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Order
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus moves the order from one status to another in a single guarded
// write; a stale from-status reports conflict.
func (r *OrderRepositoryImpl) SetStatus(ctx context.Context, id primitive.ObjectID, from, to Status) (*Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err := r.Orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		opts,
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkPaid records the gateway reference and moves a pending order to paid.
func (r *OrderRepositoryImpl) MarkPaid(ctx context.Context, id primitive.ObjectID, paymentRef string) (*Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err := r.Orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{
			"status":      StatusPaid,
			"payment_ref": paymentRef,
			"updated_at":  time.Now(),
		}},
		opts,
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
