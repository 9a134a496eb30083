package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spigell/careermate/internal/extract"
)

const (
	FormField   = "resume"
	maxUpload   = 15 << 20
	pdfMaxPages = 2
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server exposes POST /analyze.
type Server struct {
	scorer *Scorer
	logger *zap.Logger
	app    *fiber.App
}

func NewServer(scorer *Scorer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{scorer: scorer, logger: logger}

	app := fiber.New(fiber.Config{
		BodyLimit:             maxUpload + 1<<20,
		DisableStartupMessage: true,
	})
	app.Use(cors.New())
	app.Post("/analyze", s.Analyze)

	s.app = app
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until ctx is done.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	s.logger.Info("scoring service listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) Analyze(c *fiber.Ctx) error {
	fh, err := c.FormFile(FormField)
	if err != nil || fh == nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{Error: "No resume uploaded"})
	}

	log := s.logger.With(zap.String("filename", fh.Filename), zap.Int64("size", fh.Size))

	report, err := s.analyze(c.UserContext(), fh)
	if err != nil {
		log.Error("resume analysis failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(errorResponse{
			Error:   "Failed to analyze resume",
			Details: err.Error(),
		})
	}

	log.Info("resume analyzed", zap.Float64("overall", report.Overall))
	return c.Status(http.StatusOK).JSON(report)
}

func (s *Server) analyze(ctx context.Context, fh *multipart.FileHeader) (*Report, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUpload {
		return nil, fmt.Errorf("file too large: limit is %d bytes", maxUpload)
	}

	text, err := uploadText(fh.Filename, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("no text could be extracted from the resume")
	}

	return s.scorer.Score(ctx, text)
}

// uploadText reads the first pages of a PDF and treats anything else as
// UTF-8 text, dropping invalid sequences.
func uploadText(filename string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return extract.PDFText(data, pdfMaxPages)
	}
	return strings.TrimSpace(string(bytes.ToValidUTF8(data, nil))), nil
}
