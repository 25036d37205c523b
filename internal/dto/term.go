package dto

// TermQuery carries raw listing filters exactly as received. Empty strings mean "not supplied".
type TermQuery struct {
	CategoryID   string `form:"category_id" validate:"omitempty,number"`
	CategoryName string `form:"category_name" validate:"omitempty,max=100"`
	TermName     string `form:"term_name" validate:"omitempty,max=100"`
}

// CreateTermRequest is the payload for creating a term. Every field must be
// present; alternatives may be empty strings.
type CreateTermRequest struct {
	TermName     *string `json:"term_name" validate:"required,min=1,max=100"`
	CategoryName *string `json:"category_name" validate:"required,min=1,max=100"`
	Definition   *string `json:"definition" validate:"required,min=1"`
	Alt1         *string `json:"alt1" validate:"required"`
	Alt2         *string `json:"alt2" validate:"required"`
	Alt3         *string `json:"alt3" validate:"required"`
}

// UpdateTermRequest replaces every field of an existing term.
type UpdateTermRequest struct {
	ID *int64 `json:"id" validate:"required,gt=0"`
	CreateTermRequest
}

// DeleteTermRequest identifies the term to remove.
type DeleteTermRequest struct {
	ID *int64 `json:"id" validate:"required,gt=0"`
}

// TermCreated is returned after a successful create.
type TermCreated struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	InQuiz  bool   `json:"inquiz"`
}

// TermUpdated is returned after a successful update.
type TermUpdated struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	InQuiz  bool   `json:"inquiz"`
}

// ExportFile is a rendered glossary export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportQuery selects the export format on top of the listing filters.
type ExportQuery struct {
	TermQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
