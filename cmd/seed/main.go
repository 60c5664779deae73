package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/access"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/theater"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/user"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"
)

const (
	exitOK        = 0
	exitConfig    = 1
	exitDatastore = 2
)

// Seeds the super admin account and a demo theater with its provisioned
// role and page-access documents. Re-running skips anything that already
// exists.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(exitConfig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongo connect: %v\n", err)
		os.Exit(exitDatastore)
	}
	defer client.Disconnect(context.Background())

	mongoDB := &database.MongodbDB{DB: client.Database(cfg.DBName)}
	logger := zap.NewNop()

	userRepo := user.NewUserRepository(mongoDB)
	roleRepo := access.NewRoleRepository(mongoDB)
	pageRepo := access.NewPageAccessRepository(mongoDB)
	theaterRepo := theater.NewTheaterRepository(mongoDB)
	accessSv := access.NewAccessService(roleRepo, pageRepo, logger)
	theaterSv := theater.NewTheaterService(theaterRepo, accessSv, logger)

	for _, repo := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{userRepo, roleRepo, pageRepo, theaterRepo} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "index creation: %v\n", err)
			os.Exit(exitDatastore)
		}
	}

	if err := seedSuperAdmin(ctx, userRepo); err != nil {
		fmt.Fprintf(os.Stderr, "super admin: %v\n", err)
		os.Exit(exitDatastore)
	}

	if err := seedDemoTheater(ctx, theaterRepo, theaterSv); err != nil {
		fmt.Fprintf(os.Stderr, "demo theater: %v\n", err)
		os.Exit(exitDatastore)
	}

	fmt.Println("Seeding complete")
	os.Exit(exitOK)
}

func seedSuperAdmin(ctx context.Context, userRepo user.UserRepository) error {
	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "ChangeMe123!")

	if _, err := userRepo.FindByUsername(ctx, username); err == nil {
		fmt.Printf("super admin %q already exists, skipping\n", username)
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := userRepo.Create(ctx, &models.User{
		Username: username,
		Password: hash,
		Role:     models.RoleSuperAdmin,
		Status:   models.StatusActive,
	}); err != nil {
		return err
	}
	fmt.Printf("super admin %q created\n", username)
	return nil
}

func seedDemoTheater(ctx context.Context, theaterRepo theater.TheaterRepository, theaterSv theater.TheaterService) error {
	name := envOr("SEED_THEATER_NAME", "Demo Theater")

	if _, err := theaterRepo.FindBySlug(ctx, utils.Slugify(name)); err == nil {
		fmt.Printf("theater %q already exists, skipping\n", name)
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	t, err := theaterSv.Create(ctx, theater.CreateTheaterInput{
		Name: name,
		City: envOr("SEED_THEATER_CITY", ""),
	})
	if err != nil {
		return err
	}
	fmt.Printf("theater %q provisioned (%s)\n", t.Name, t.ID.Hex())
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
