package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/catalog"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/offer"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/otp"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/stock"
)

type PlaceOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type PlaceOrderInput struct {
	PhoneNumber string           `json:"phone_number"`
	OtpCode     string           `json:"otp_code"`
	SeatInfo    string           `json:"seat_info"`
	OfferCode   string           `json:"offer_code"`
	Items       []PlaceOrderItem `json:"items"`
}

type OrderService interface {
	Place(ctx context.Context, theaterID primitive.ObjectID, in PlaceOrderInput) (*Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Order, error)
	List(ctx context.Context, theaterID primitive.ObjectID, status *Status, limit int64) ([]Order, error)
	History(ctx context.Context, theaterID primitive.ObjectID, phone string) ([]Order, error)
	Advance(ctx context.Context, id primitive.ObjectID, to Status) (*Order, error)
}

type OrderServiceImpl struct {
	repo     OrderRepository
	catalog  catalog.CatalogService
	stock    stock.StockService
	offers   offer.OfferService
	otp      otp.OTPService
	gateway  PaymentGateway
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(
	repo OrderRepository,
	catalogSv catalog.CatalogService,
	stockSv stock.StockService,
	offerSv offer.OfferService,
	otpSv otp.OTPService,
	gateway PaymentGateway,
	logger *zap.Logger,
) OrderService {
	return &OrderServiceImpl{
		repo:    repo,
		catalog: catalogSv,
		stock:   stockSv,
		offers:  offerSv,
		otp:     otpSv,
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
	}
}

// Place runs the full order flow: consume the caller's one-time code, price
// the items, apply any offer, draw down stock, then collect payment when a
// gateway is configured. Stock is committed before payment; a failed charge
// leaves the order pending rather than unwinding the ledger.
func (s *OrderServiceImpl) Place(ctx context.Context, theaterID primitive.ObjectID, in PlaceOrderInput) (*Order, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		return nil, apperrors.Validation("phone number is required")
	}
	if len(in.Items) == 0 {
		return nil, apperrors.Validation("order has no items")
	}

	if err := s.otp.Consume(ctx, phone, otp.PurposeOrder, in.OtpCode); err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		TheaterID:   theaterID,
		PhoneNumber: phone,
		SeatInfo:    strings.TrimSpace(in.SeatInfo),
		Status:      StatusPending,
	}

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.Validation("item quantity must be positive")
		}
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperrors.Validation("invalid product id")
		}
		p, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if p.TheaterID != theaterID || !p.IsActive {
			return nil, apperrors.ErrNotFound
		}
		line := OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
			LineTotal: p.Price * float64(item.Quantity),
		}
		o.Items = append(o.Items, line)
		o.Subtotal += line.LineTotal
	}
	o.Total = o.Subtotal

	if code := strings.TrimSpace(in.OfferCode); code != "" {
		off, err := s.offers.Resolve(ctx, theaterID, code, now)
		if err != nil {
			return nil, err
		}
		o.OfferID = &off.ID
		o.OfferCode = off.Code

		// Product-scoped offers discount only the eligible lines.
		eligible := o.Subtotal
		if len(off.ProductIDs) > 0 {
			eligible = 0
			for _, line := range o.Items {
				if off.AppliesTo(line.ProductID) {
					eligible += line.LineTotal
				}
			}
		}
		o.Total = o.Subtotal - eligible + off.Apply(eligible)
	}

	// Draw down stock before persisting; an insufficient line aborts the
	// whole order with the earlier lines already sold. The ledger is
	// per-product so a cross-product rollback would need transactions;
	// the counter staff reconciles the rare partial failure.
	for _, item := range o.Items {
		_, err := s.stock.RecordSale(ctx, stock.SaleInput{
			ProductID: item.ProductID,
			TheaterID: theaterID,
			Date:      now,
			Quantity:  item.Quantity,
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrInsufficientStock) {
				s.logger.Warn("order rejected, insufficient stock",
					zap.String("product_id", item.ProductID.Hex()),
					zap.Int64("quantity", item.Quantity))
			}
			return nil, err
		}
	}

	number, err := s.repo.NextOrderNumber(ctx, theaterID)
	if err != nil {
		return nil, err
	}
	o.OrderNumber = number

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	if s.gateway.Enabled() {
		ref, err := s.gateway.Charge(ctx, o.OrderNumber, o.Total, phone)
		if err != nil {
			s.logger.Error("payment failed, order stays pending",
				zap.Int64("order_number", o.OrderNumber),
				zap.Error(err))
			return o, nil
		}
		if paid, err := s.repo.MarkPaid(ctx, o.ID, ref); err == nil {
			o = paid
		}
	}

	s.logger.Info("order placed",
		zap.Int64("order_number", o.OrderNumber),
		zap.String("theater_id", theaterID.Hex()),
		zap.Float64("total", o.Total))
	return o, nil
}

func (s *OrderServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderServiceImpl) List(ctx context.Context, theaterID primitive.ObjectID, status *Status, limit int64) ([]Order, error) {
	return s.repo.List(ctx, theaterID, status, limit)
}

// History lists a customer's past orders at a theater. Access is gated in
// the controller by a one-time code for the order_history purpose.
func (s *OrderServiceImpl) History(ctx context.Context, theaterID primitive.ObjectID, phone string) ([]Order, error) {
	return s.repo.ListByPhone(ctx, theaterID, strings.TrimSpace(phone))
}

func (s *OrderServiceImpl) Advance(ctx context.Context, id primitive.ObjectID, to Status) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanMoveTo(to) {
		return nil, apperrors.ErrConflict
	}
	return s.repo.SetStatus(ctx, id, o.Status, to)
}
