package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/glossary-api/internal/dto"
	"github.com/noah-isme/glossary-api/internal/models"
	"github.com/noah-isme/glossary-api/internal/repository"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

type termRepository interface {
	ListPublic(ctx context.Context, filter models.TermFilter) ([]models.PublicTerm, error)
	ListAdmin(ctx context.Context, filter models.TermFilter) ([]models.AdminTerm, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, term *models.Term) error
	Update(ctx context.Context, term *models.Term) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type categoryResolver interface {
	FindIDByName(ctx context.Context, name string) (int64, error)
}

type auditRecorder interface {
	Record(event string)
}

type termWriteObserver interface {
	ObserveTermWrite(operation string, err error)
}

// TermService implements term listing and the create/update/delete workflows.
type TermService struct {
	terms      termRepository
	categories categoryResolver
	audit      auditRecorder
	metrics    termWriteObserver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewTermService creates a new term service. audit and metrics may be nil.
func NewTermService(terms termRepository, categories categoryResolver, audit auditRecorder, metrics termWriteObserver, validate *validator.Validate, logger *zap.Logger) *TermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{
		terms:      terms,
		categories: categories,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// ParseFilter validates raw query values. It never touches the store.
func (s *TermService) ParseFilter(q dto.TermQuery) (models.TermFilter, error) {
	if err := s.validator.Struct(q); err != nil {
		return models.TermFilter{}, appErrors.Validation(err, "invalid term filters")
	}

	filter := models.TermFilter{CategoryName: q.CategoryName, TermName: q.TermName}
	if q.CategoryID != "" {
		id, err := strconv.ParseInt(q.CategoryID, 10, 64)
		if err != nil {
			return models.TermFilter{}, appErrors.Validation(err, "category_id must be numeric")
		}
		filter.CategoryID = &id
	}
	return filter, nil
}

// ListPublic returns the reduced consumer projection.
func (s *TermService) ListPublic(ctx context.Context, q dto.TermQuery) ([]models.PublicTerm, error) {
	filter, err := s.ParseFilter(q)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.ListPublic(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list terms")
	}
	return terms, nil
}

// ListAdmin returns the full admin projection.
func (s *TermService) ListAdmin(ctx context.Context, q dto.TermQuery) ([]models.AdminTerm, error) {
	filter, err := s.ParseFilter(q)
	if err != nil {
		return nil, err
	}
	terms, err := s.terms.ListAdmin(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list terms")
	}
	return terms, nil
}

// Create validates the payload, rejects duplicate names, resolves the category,
// derives the quiz flag and inserts the term.
func (s *TermService) Create(ctx context.Context, req dto.CreateTermRequest) (created *dto.TermCreated, err error) {
	defer func() { s.observe("create", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid term payload")
	}

	name := *req.TermName
	exists, err := s.terms.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check term name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrTermExists, fmt.Sprintf("term %q already exists", name))
	}

	categoryID, err := s.resolveCategory(ctx, *req.CategoryName)
	if err != nil {
		return nil, err
	}

	term := buildTerm(req, categoryID)
	if err := s.terms.Create(ctx, term); err != nil {
		return nil, s.writeError(err, name, *req.CategoryName, "failed to create term")
	}

	s.record(fmt.Sprintf("term created id=%d name=%q category_id=%d inquiz=%t", term.ID, term.Name, term.CategoryID, term.InQuiz))
	return &dto.TermCreated{ID: term.ID, Message: "term created", InQuiz: term.InQuiz}, nil
}

// Update replaces every field of an existing term. A rename onto another term's
// name is rejected; the term's own name is not treated as a collision.
func (s *TermService) Update(ctx context.Context, req dto.UpdateTermRequest) (updated *dto.TermUpdated, err error) {
	defer func() { s.observe("update", err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid term payload")
	}

	id := *req.ID
	name := *req.TermName
	exists, err := s.terms.ExistsByName(ctx, name, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check term name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrTermExists, fmt.Sprintf("term %q already exists", name))
	}

	categoryID, err := s.resolveCategory(ctx, *req.CategoryName)
	if err != nil {
		return nil, err
	}

	term := buildTerm(req.CreateTermRequest, categoryID)
	term.ID = id
	affected, err := s.terms.Update(ctx, term)
	if err != nil {
		return nil, s.writeError(err, name, *req.CategoryName, "failed to update term")
	}
	if affected == 0 {
		s.logger.Warn("term update matched no rows", zap.Int64("term_id", id))
	}

	s.record(fmt.Sprintf("term updated id=%d name=%q category_id=%d inquiz=%t", term.ID, term.Name, term.CategoryID, term.InQuiz))
	return &dto.TermUpdated{ID: id, Message: "term updated", InQuiz: term.InQuiz}, nil
}

// Delete removes a term, reporting not found when no row matched.
func (s *TermService) Delete(ctx context.Context, req dto.DeleteTermRequest) (err error) {
	defer func() { s.observe("delete", err) }()

	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid term id")
	}

	id := *req.ID
	affected, err := s.terms.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to delete term")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrTermNotFound, fmt.Sprintf("term %d not found", id))
	}

	s.record(fmt.Sprintf("term deleted id=%d", id))
	return nil
}

// resolveCategory maps a category name to its id. A missing category is a 404;
// a failed lookup is a 500.
func (s *TermService) resolveCategory(ctx context.Context, name string) (int64, error) {
	id, err := s.categories.FindIDByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrCategoryNotFound, fmt.Sprintf("category %q not found", name))
		}
		return 0, appErrors.Internal(err, "failed to resolve category")
	}
	return id, nil
}

func (s *TermService) writeError(err error, name, category, message string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrTermExists, fmt.Sprintf("term %q already exists", name))
	case errors.Is(err, repository.ErrForeignKey):
		return appErrors.Clone(appErrors.ErrCategoryNotFound, fmt.Sprintf("category %q not found", category))
	default:
		return appErrors.Internal(err, message)
	}
}

func (s *TermService) record(event string) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}

func (s *TermService) observe(operation string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveTermWrite(operation, err)
	}
}

func buildTerm(req dto.CreateTermRequest, categoryID int64) *models.Term {
	alt1, alt2, alt3 := *req.Alt1, *req.Alt2, *req.Alt3
	return &models.Term{
		Name:       *req.TermName,
		CategoryID: categoryID,
		Definition: *req.Definition,
		Alt1:       alt1,
		Alt2:       alt2,
		Alt3:       alt3,
		InQuiz:     models.DeriveInQuiz(alt1, alt2, alt3),
	}
}
