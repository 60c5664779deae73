package otp

import (
	"context"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OTPRepository interface {
	// Supersede deletes any unverified record for (phone, purpose) and
	// inserts the replacement.
	Supersede(ctx context.Context, record *OTP) error
	FindLatest(ctx context.Context, phone string, purpose Purpose) (*OTP, error)
	IncAttempts(ctx context.Context, id primitive.ObjectID) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	// ConsumeMatch atomically deletes a live matching record; NotFound when
	// nothing matched.
	ConsumeMatch(ctx context.Context, phone string, purpose Purpose, code string, now time.Time, maxAttempts int) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type OTPRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOTPRepository(mongodb *database.MongodbDB) OTPRepository {
	return &OTPRepositoryImpl{
		Collection: mongodb.DB.Collection("otps"),
	}
}

func (r *OTPRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// TTL reaper: documents vanish once expires_at passes.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "phone_number", Value: 1}, {Key: "purpose", Value: 1}},
		},
	})
	return err
}

func (r *OTPRepositoryImpl) Supersede(ctx context.Context, record *OTP) error {
	filter := bson.M{
		"phone_number": record.PhoneNumber,
		"purpose":      record.Purpose,
		"verified":     false,
	}
	if _, err := r.Collection.DeleteMany(ctx, filter); err != nil {
		return err
	}
	_, err := r.Collection.InsertOne(ctx, record)
	return err
}

func (r *OTPRepositoryImpl) FindLatest(ctx context.Context, phone string, purpose Purpose) (*OTP, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var record OTP
	err := r.Collection.FindOne(ctx, bson.M{"phone_number": phone, "purpose": purpose}, opts).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *OTPRepositoryImpl) IncAttempts(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"attempts": 1}})
	return err
}

func (r *OTPRepositoryImpl) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"verified": true}})
	return err
}

func (r *OTPRepositoryImpl) ConsumeMatch(ctx context.Context, phone string, purpose Purpose, code string, now time.Time, maxAttempts int) error {
	filter := bson.M{
		"phone_number": phone,
		"purpose":      purpose,
		"code":         code,
		"expires_at":   bson.M{"$gt": now},
		"attempts":     bson.M{"$lt": maxAttempts},
	}
	err := r.Collection.FindOneAndDelete(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return apperrors.ErrNotFound
	}
	return err
}

func (r *OTPRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.Collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
