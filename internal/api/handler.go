package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-tables/internal/logger"
	"github.com/insightdelivered/statement-tables/internal/models"
	"github.com/insightdelivered/statement-tables/internal/writer"
)

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success         bool                 `json:"success"`
	Error           string               `json:"error,omitempty"`
	Backend         string               `json:"backend,omitempty"`
	Transactions    []models.Transaction `json:"transactions"`
	CSV             string               `json:"csv,omitempty"`
	TotalWithdrawal decimal.Decimal      `json:"totalWithdrawal"`
	TotalDeposit    decimal.Decimal      `json:"totalDeposit"`
	Count           int                  `json:"count"`
	TablesFound     int                  `json:"tablesFound"`
	TablesSkipped   int                  `json:"tablesSkipped"`
	Version         string               `json:"version,omitempty"`
	DebugLines      []models.DebugLine   `json:"debugLines,omitempty"`
}

// Processor converts one document; document.Driver satisfies it.
type Processor interface {
	Process(ctx context.Context, path string) (*models.Statement, error)
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Processor Processor
	Version   string
	StaticDir string
	Logger    zerolog.Logger
}

// MaxUploadBytes bounds the multipart body.
const MaxUploadBytes = 32 << 20

// NewApp builds the fiber application with all routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-tables",
		BodyLimit:             MaxUploadBytes,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)

	// Serve the web UI; unknown non-API paths fall back to index.html
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
		})
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleConvert runs one uploaded PDF through the document driver and
// returns its transactions with a CSV rendering.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}
	includeHeader := c.FormValue("header") == "true"

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fh, tmpPath); err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}

	log := h.Logger.With().Str("upload", fh.Filename).Logger()
	ctx := logger.WithContext(c.UserContext(), log)

	stmt, err := h.Processor.Process(ctx, tmpPath)
	if err != nil {
		log.Warn().Err(err).Msg("conversion failed")
		return writeError(c, statusFor(err), fmt.Sprintf("Conversion failed: %v", err))
	}
	stmt.Source = fh.Filename

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := csvWriter.Write(&csvBuf, stmt); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	resp := ConvertResponse{
		Success:       true,
		Backend:       stmt.Backend,
		Transactions:  stmt.Transactions,
		CSV:           csvBuf.String(),
		Count:         len(stmt.Transactions),
		TablesFound:   stmt.TablesFound,
		TablesSkipped: stmt.TablesSkipped,
		Version:       h.Version,
		DebugLines:    stmt.DebugLines,
	}
	for _, txn := range stmt.Transactions {
		resp.TotalWithdrawal = resp.TotalWithdrawal.Add(txn.Withdrawal)
		resp.TotalDeposit = resp.TotalDeposit.Add(txn.Deposit)
	}
	// nil marshals to JSON null, not []
	if resp.Transactions == nil {
		resp.Transactions = []models.Transaction{}
	}

	return c.JSON(resp)
}

// statusFor maps driver errors to HTTP status codes. Anything other than
// cancellation is a problem with the uploaded document.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusRequestTimeout
	}
	return fiber.StatusUnprocessableEntity
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success:      false,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
