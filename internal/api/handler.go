package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/categorize"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/profile"
	"github.com/insightdelivered/statement-extractor/internal/store"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ExtractResponse is the JSON response from the /api/extract endpoint.
type ExtractResponse struct {
	Success      bool                         `json:"success"`
	Error        string                       `json:"error,omitempty"`
	SourceFileID string                       `json:"source_file_id,omitempty"`
	Filename     string                       `json:"filename"`
	Method       string                       `json:"method,omitempty"`
	Transactions []models.Transaction         `json:"transactions"`
	Count        int                          `json:"count"`
	TotalDebit   float64                      `json:"total_debit"`
	TotalCredit  float64                      `json:"total_credit"`
	Categories   []categorize.CategorySummary `json:"categories,omitempty"`
}

// SummaryResponse is the JSON response from the /api/summary endpoint.
type SummaryResponse struct {
	Profile           profile.Summary              `json:"profile"`
	TransactionCount  int                          `json:"transaction_count"`
	TotalDebit        float64                      `json:"total_debit"`
	TotalCredit       float64                      `json:"total_credit"`
	Net               float64                      `json:"net"`
	Categories        []categorize.CategorySummary `json:"categories"`
	RemainingOfIncome float64                      `json:"remaining_of_income"`
}

// TransactionLister is the read side of the transaction store.
type TransactionLister interface {
	List(ctx context.Context, f store.Filter) ([]models.Transaction, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Ingester     *pipeline.Ingester
	Transactions TransactionLister
	Profile      *profile.Store
	Categorizer  *categorize.Categorizer
	Log          zerolog.Logger

	// UploadDir receives uploads while they are processed. Empty means the
	// OS temp dir.
	UploadDir string
	StaticDir string
	Version   string
}

// Options configures the fiber app built by NewApp.
type Options struct {
	BodyLimit int
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(h *Handler, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-extractor",
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(RequestLogger(h.Log))
	app.Use(Recovery(h.Log))
	app.Use(CORS())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/extract", h.HandleExtract)
	api.Get("/files", h.HandleListFiles)
	api.Delete("/files/:id", h.HandleDeleteFile)
	api.Get("/transactions", h.HandleListTransactions)
	api.Get("/summary", h.HandleSummary)
	api.Get("/categories", h.HandleCategories)
	api.Get("/profile/income", h.HandleGetIncome)
	api.Put("/profile/income", h.HandleSetIncome)
	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("No route for %s %s", c.Method(), c.Path()))
	})

	// Serve the web UI. Unknown non-file routes get index.html.
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleExtract handles POST /api/extract with a multipart "file" field.
func (h *Handler) HandleExtract(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}

	name := filepath.Base(fh.Filename)
	if !extractor.Supported(name) {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Unsupported file type. Use one of: %s", strings.Join(extractor.SupportedExtensions, ", ")))
	}

	tmp, err := os.CreateTemp(h.UploadDir, "statement-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to create temp file")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fh, tmpPath); err != nil {
		h.Log.Error().Err(err).Msg("Failed to save upload")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	result, err := h.Ingester.Ingest(c.UserContext(), pipeline.Document{Path: tmpPath, Name: name})
	if err != nil {
		h.Log.Error().Err(err).Str("source_file_id", result.SourceFileID).Msg("Failed to persist extraction")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store extracted transactions.")
	}

	resp := ExtractResponse{
		Success:      result.Succeeded,
		Error:        result.Error,
		SourceFileID: result.SourceFileID,
		Filename:     name,
		Method:       result.Method,
		Transactions: result.Transactions,
		Count:        result.Count,
	}
	// Ensure transactions is never nil (nil marshals to JSON null, not [])
	if resp.Transactions == nil {
		resp.Transactions = []models.Transaction{}
	}
	if !result.Succeeded {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	resp.TotalDebit, resp.TotalCredit = totals(result.Transactions)
	resp.Categories = categorize.Summarize(result.Transactions)
	return c.JSON(resp)
}

func (h *Handler) HandleListFiles(c *fiber.Ctx) error {
	files := h.Profile.Files()
	return c.JSON(fiber.Map{
		"files": files,
		"count": len(files),
	})
}

// HandleDeleteFile handles DELETE /api/files/:id, removing the file's
// transactions and its profile entry.
func (h *Handler) HandleDeleteFile(c *fiber.Ctx) error {
	id := c.Params("id")
	_, known := h.Profile.File(id)

	deleted, err := h.Ingester.RemoveFile(c.UserContext(), id)
	if err != nil {
		h.Log.Error().Err(err).Str("source_file_id", id).Msg("Failed to remove file")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to remove file.")
	}
	if !known && deleted == 0 {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("File %q not found", id))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"file_id": id,
		"deleted": deleted,
	})
}

// HandleListTransactions handles GET /api/transactions. Query parameters:
// q, file_id, direction, category, limit.
func (h *Handler) HandleListTransactions(c *fiber.Ctx) error {
	f := store.Filter{
		SourceFileID: c.Query("file_id"),
		Category:     c.Query("category"),
		Query:        c.Query("q"),
		Limit:        c.QueryInt("limit", 0),
	}
	switch d := models.Direction(strings.ToLower(c.Query("direction"))); d {
	case "", models.DirectionCredit, models.DirectionDebit:
		f.Direction = d
	default:
		return fiber.NewError(fiber.StatusBadRequest, "direction must be credit or debit")
	}
	if f.Limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	txns, err := h.Transactions.List(c.UserContext(), f)
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to list transactions")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list transactions.")
	}
	return c.JSON(fiber.Map{
		"transactions": txns,
		"count":        len(txns),
	})
}

// HandleSummary handles GET /api/summary over every stored transaction.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	txns, err := h.Transactions.List(c.UserContext(), store.Filter{})
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to list transactions")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build summary.")
	}

	debit, credit := totals(txns)
	prof := h.Profile.Summary()
	net := decimal.NewFromFloat(credit).Sub(decimal.NewFromFloat(debit))
	remaining := decimal.NewFromFloat(prof.MonthlyIncome).Sub(decimal.NewFromFloat(debit))

	return c.JSON(SummaryResponse{
		Profile:           prof,
		TransactionCount:  len(txns),
		TotalDebit:        debit,
		TotalCredit:       credit,
		Net:               net.InexactFloat64(),
		Categories:        categorize.Summarize(txns),
		RemainingOfIncome: remaining.InexactFloat64(),
	})
}

func (h *Handler) HandleCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": h.Categorizer.Categories(),
	})
}

func (h *Handler) HandleGetIncome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"monthly_income": h.Profile.MonthlyIncome()})
}

// HandleSetIncome handles PUT /api/profile/income with {"monthly_income": n}.
func (h *Handler) HandleSetIncome(c *fiber.Ctx) error {
	var req struct {
		MonthlyIncome *float64 `json:"monthly_income"`
	}
	if err := c.BodyParser(&req); err != nil || req.MonthlyIncome == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Body must be {\"monthly_income\": <number>}")
	}
	if err := h.Profile.SetMonthlyIncome(*req.MonthlyIncome); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"monthly_income": h.Profile.MonthlyIncome(),
	})
}

// totals sums debits (as a positive magnitude) and credits separately.
func totals(txns []models.Transaction) (debit, credit float64) {
	var d, cr decimal.Decimal
	for _, txn := range txns {
		amount := decimal.NewFromFloat(txn.Amount)
		if txn.Direction == models.DirectionCredit {
			cr = cr.Add(amount)
		} else {
			d = d.Add(amount.Abs())
		}
	}
	return d.Round(2).InexactFloat64(), cr.Round(2).InexactFloat64()
}
