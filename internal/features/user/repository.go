package user

import (
	"context"
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error

	AppendAuthToken(ctx context.Context, id primitive.ObjectID, token models.AuthToken) error
	RemoveAuthToken(ctx context.Context, id primitive.ObjectID, value string) error
	ResetLoginAttempts(ctx context.Context, id primitive.ObjectID, lastLogin time.Time) error
	IncLoginAttempts(ctx context.Context, id primitive.ObjectID) (int, error)
	SetLoginAttempts(ctx context.Context, id primitive.ObjectID, attempts int) error
	SetLockUntil(ctx context.Context, id primitive.ObjectID, until time.Time) error

	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "auth_tokens.value", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "theater_id", Value: 1}},
		},
	})
	return err
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict.WithCause(err)
	}
	return err
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	var user models.User
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByToken resolves the owner of a live bearer token.
func (r *UserRepositoryImpl) FindByToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	filter := bson.M{
		"auth_tokens": bson.M{
			"$elemMatch": bson.M{
				"value":      token,
				"expires_at": bson.M{"$gt": now},
			},
		},
	}

	var user models.User
	err := r.Collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]models.User, int64, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrNotFound
	}

	set["updated_at"] = time.Now()
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict.WithCause(err)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrNotFound
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AppendAuthToken pushes the token and truncates the ring to its most recent
// entries in one atomic update.
func (r *UserRepositoryImpl) AppendAuthToken(ctx context.Context, id primitive.ObjectID, token models.AuthToken) error {
	update := bson.M{
		"$push": bson.M{
			"auth_tokens": bson.M{
				"$each":  []models.AuthToken{token},
				"$slice": -models.MaxAuthTokens,
			},
		},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *UserRepositoryImpl) RemoveAuthToken(ctx context.Context, id primitive.ObjectID, value string) error {
	update := bson.M{
		"$pull": bson.M{
			"auth_tokens": bson.M{"value": value},
		},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *UserRepositoryImpl) ResetLoginAttempts(ctx context.Context, id primitive.ObjectID, lastLogin time.Time) error {
	update := bson.M{
		"$set":   bson.M{"login_attempts": 0, "last_login": lastLogin},
		"$unset": bson.M{"lock_until": ""},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// IncLoginAttempts atomically advances the counter and returns the new value,
// so two concurrent failures advance it by 2.
func (r *UserRepositoryImpl) IncLoginAttempts(ctx context.Context, id primitive.ObjectID) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := r.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"login_attempts": 1}},
		opts,
	).Decode(&updated)
	if err != nil {
		return 0, err
	}
	return updated.LoginAttempts, nil
}

func (r *UserRepositoryImpl) SetLoginAttempts(ctx context.Context, id primitive.ObjectID, attempts int) error {
	update := bson.M{
		"$set":   bson.M{"login_attempts": attempts},
		"$unset": bson.M{"lock_until": ""},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *UserRepositoryImpl) SetLockUntil(ctx context.Context, id primitive.ObjectID, until time.Time) error {
	_, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lock_until": until}},
	)
	return err
}
