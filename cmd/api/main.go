package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	common_api "github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/database"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/access"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/auth"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/catalog"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/offer"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/order"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/otp"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/settings"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/stock"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/theater"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/user"
	"github.com/aedentekgit/yqpaynow-sub013/internal/logger"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
	"github.com/aedentekgit/yqpaynow-sub013/internal/scheduler"
	"github.com/aedentekgit/yqpaynow-sub013/pkg/utils"
)

// NewFiberServer creates the Fiber app with the shared middleware stack.
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	utils.SetSecret(cfg.JWTSecret)
	return app
}

// AsRoute tags a constructor so Fx adds its result to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down on exit.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures database indexes exist at startup.
func InitializeIndexes(
	lc fx.Lifecycle,
	logg *zap.Logger,
	userRepo user.UserRepository,
	roleRepo access.RoleRepository,
	pageRepo access.PageAccessRepository,
	otpRepo otp.OTPRepository,
	stockRepo stock.StockRepository,
	settingsRepo settings.SettingsRepository,
	theaterRepo theater.TheaterRepository,
	catalogRepo catalog.CatalogRepository,
	offerRepo offer.OfferRepository,
	orderRepo order.OrderRepository,
) {
	type indexed interface {
		EnsureIndexes(ctx context.Context) error
	}
	repos := map[string]indexed{
		"users":       userRepo,
		"roles":       roleRepo,
		"page_access": pageRepo,
		"otp":         otpRepo,
		"stock":       stockRepo,
		"settings":    settingsRepo,
		"theaters":    theaterRepo,
		"catalog":     catalogRepo,
		"offers":      offerRepo,
		"orders":      orderRepo,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for name, repo := range repos {
					if err := repo.EnsureIndexes(ctx); err != nil {
						logg.Error("index creation failed",
							zap.String("collection", name),
							zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			user.NewUserRepository,
			access.NewRoleRepository,
			access.NewPageAccessRepository,
			otp.NewOTPRepository,
			stock.NewStockRepository,
			settings.NewSettingsRepository,
			theater.NewTheaterRepository,
			catalog.NewCatalogRepository,
			offer.NewOfferRepository,
			order.NewOrderRepository,

			otp.NewLogSender,
			order.NewPaymentGateway,

			auth.NewAuthService,
			user.NewUserService,
			access.NewAccessService,
			otp.NewOTPService,
			stock.NewStockService,
			settings.NewSettingsService,
			theater.NewTheaterService,
			catalog.NewCatalogService,
			offer.NewOfferService,
			order.NewOrderService,

			// Middleware sees the auth and access services through small
			// interfaces; adapt them here.
			func(s auth.AuthService) middleware.TokenValidator { return s },
			func(s access.AccessService) middleware.AccessChecker { return s },

			auth.NewAuthController,
			user.NewUserController,
			access.NewAccessController,
			otp.NewOTPController,
			stock.NewStockController,
			settings.NewSettingsController,
			theater.NewTheaterController,
			catalog.NewCatalogController,
			offer.NewOfferController,
			order.NewOrderController,

			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(access.NewAccessApi),
			AsRoute(otp.NewOTPApi),
			AsRoute(stock.NewStockAPI),
			AsRoute(settings.NewSettingsAPI),
			AsRoute(theater.NewTheaterAPI),
			AsRoute(catalog.NewCatalogAPI),
			AsRoute(offer.NewOfferAPI),
			AsRoute(order.NewOrderAPI),
		),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			InitializeIndexes,
			scheduler.NewScheduler,
			StartServer,
		),
	)

	app.Run()
}
