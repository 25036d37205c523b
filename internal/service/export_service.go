package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/glossary-api/internal/dto"
	"github.com/noah-isme/glossary-api/internal/models"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
	"github.com/noah-isme/glossary-api/pkg/export"
)

type adminTermLister interface {
	ListAdmin(ctx context.Context, q dto.TermQuery) ([]models.AdminTerm, error)
}

// Renderer turns a dataset into a downloadable file.
type Renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

var exportHeaders = []string{"category_id", "category_name", "term_id", "term_name", "definition", "alt1", "alt2", "alt3", "inquiz"}

// ExportService renders the admin projection as CSV or PDF.
type ExportService struct {
	terms     adminTermLister
	renderers map[string]Renderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the default CSV and PDF renderers.
func NewExportService(terms adminTermLister, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExportService{
		terms: terms,
		renderers: map[string]Renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(map[string]float64{"definition": 4, "term_name": 2, "category_name": 2}),
		},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Export lists the filtered terms and renders them. Format defaults to csv.
func (s *ExportService) Export(ctx context.Context, q dto.ExportQuery) (*dto.ExportFile, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Validation(err, "format must be csv or pdf")
	}
	format := q.Format
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	terms, err := s.terms.ListAdmin(ctx, q.TermQuery)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(buildTermDataset(terms))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	s.logger.Debug("terms exported", zap.String("format", format), zap.Int("rows", len(terms)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("glossary_%s.%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func buildTermDataset(terms []models.AdminTerm) export.Dataset {
	rows := make([][]string, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, []string{
			strconv.FormatInt(t.CategoryID, 10),
			t.CategoryName,
			strconv.FormatInt(t.TermID, 10),
			t.TermName,
			t.Definition,
			t.Alt1,
			t.Alt2,
			t.Alt3,
			strconv.FormatBool(t.InQuiz),
		})
	}
	return export.Dataset{Title: "Glossary Terms", Headers: exportHeaders, Rows: rows}
}
