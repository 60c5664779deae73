package stock

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type StockController struct {
	service StockService
	logger  *zap.Logger
}

func NewStockController(service StockService, logger *zap.Logger) *StockController {
	return &StockController{service: service, logger: logger}
}

// canViewLedger reports whether the caller may read this theater's ledger.
// The product id alone names the ledger, so membership is checked against
// the records' theater rather than a route parameter.
func canViewLedger(c *fiber.Ctx, theaterID primitive.ObjectID) bool {
	usr := middleware.UserFromContext(c)
	if usr == nil {
		return false
	}
	if usr.Role == models.RoleSuperAdmin {
		return true
	}
	return usr.TheaterID != nil && *usr.TheaterID == theaterID
}

type receiptRequest struct {
	TheaterID string     `json:"theater_id"`
	Date      time.Time  `json:"date"`
	Quantity  int64      `json:"quantity"`
	UnitCost  float64    `json:"unit_cost"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type saleRequest struct {
	TheaterID string    `json:"theater_id"`
	Date      time.Time `json:"date"`
	Quantity  int64     `json:"quantity"`
}

func (ctl *StockController) Receipt(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	var req receiptRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	theaterID, err := primitive.ObjectIDFromHex(req.TheaterID)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	rec, err := ctl.service.RecordReceipt(c.Context(), ReceiptInput{
		ProductID: productID,
		TheaterID: theaterID,
		Date:      date,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, rec)
}

func (ctl *StockController) Sale(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	theaterID, err := primitive.ObjectIDFromHex(req.TheaterID)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	rec, err := ctl.service.RecordSale(c.Context(), SaleInput{
		ProductID: productID,
		TheaterID: theaterID,
		Date:      date,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, rec)
}

func (ctl *StockController) Month(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	if year == 0 || month < 1 || month > 12 {
		return api.FailValidation(c, "invalid year or month")
	}

	rec, err := ctl.service.GetMonth(c.Context(), productID, year, month)
	if err != nil {
		return api.Fail(c, err)
	}
	if !canViewLedger(c, rec.TheaterID) {
		return api.Fail(c, apperrors.ErrForbidden)
	}
	return api.Success(c, fiber.StatusOK, rec)
}

// Years lists the years the product has ledger records for.
func (ctl *StockController) Years(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	years, err := ctl.service.ListYears(c.Context(), productID)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, years)
}

// Months lists the months of a year that have ledger records.
func (ctl *StockController) Months(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	year := c.QueryInt("year")
	if year == 0 {
		return api.FailValidation(c, "invalid year")
	}

	records, err := ctl.yearRecords(c, productID, year)
	if err != nil {
		return api.Fail(c, err)
	}
	months := make([]int, 0, len(records))
	for _, rec := range records {
		months = append(months, rec.Month)
	}
	return api.Success(c, fiber.StatusOK, months)
}

func (ctl *StockController) Year(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	year := c.QueryInt("year")
	if year == 0 {
		return api.FailValidation(c, "invalid year")
	}

	records, err := ctl.yearRecords(c, productID, year)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, records)
}

// yearRecords fetches a year of ledger records and enforces theater
// membership against them. All records of a product share one theater.
func (ctl *StockController) yearRecords(c *fiber.Ctx, productID primitive.ObjectID, year int) ([]MonthlyStock, error) {
	records, err := ctl.service.GetYear(c.Context(), productID, year)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && !canViewLedger(c, records[0].TheaterID) {
		return nil, apperrors.ErrForbidden
	}
	return records, nil
}

type rolloverRequest struct {
	TheaterID string `json:"theater_id"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
}

func (ctl *StockController) Rollover(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	var req rolloverRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	theaterID, err := primitive.ObjectIDFromHex(req.TheaterID)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	if req.Year == 0 || req.Month < 1 || req.Month > 12 {
		return api.FailValidation(c, "invalid year or month")
	}

	rec, err := ctl.service.Rollover(c.Context(), productID, theaterID, req.Year, req.Month)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, rec)
}

// ExportYear streams the product's twelve-month ledger as an xlsx workbook.
func (ctl *StockController) ExportYear(c *fiber.Ctx) error {
	productID, err := primitive.ObjectIDFromHex(c.Params("productId"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	year := c.QueryInt("year")
	if year == 0 {
		return api.FailValidation(c, "invalid year")
	}

	records, err := ctl.yearRecords(c, productID, year)
	if err != nil {
		return api.Fail(c, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Stock History"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Month", "Opening Old Stock", "Used Old Stock", "Expired Old Stock", "Received", "Sales", "Closing Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, rec := range records {
		values := []interface{}{
			fmt.Sprintf("%04d-%02d", rec.Year, rec.Month),
			rec.OpeningOldStock,
			rec.UsedOldStock,
			rec.ExpiredOldStock,
			rec.receiptsTotal(),
			rec.Sales,
			rec.ClosingBalance,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		ctl.logger.Error("xlsx export failed", zap.Error(err))
		return api.Fail(c, apperrors.Internal(err))
	}

	filename := fmt.Sprintf("stock-%s-%d.xlsx", productID.Hex(), year)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
