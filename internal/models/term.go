package models

// Term is a glossary entry. InQuiz is derived from the alternatives and never set by callers.
type Term struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	CategoryID int64  `db:"category_id" json:"category_id"`
	Definition string `db:"definition" json:"definition"`
	Alt1       string `db:"alt1" json:"alt1"`
	Alt2       string `db:"alt2" json:"alt2"`
	Alt3       string `db:"alt3" json:"alt3"`
	InQuiz     bool   `db:"inquiz" json:"inquiz"`
}

// TermView selects the projection returned by term listings.
type TermView string

const (
	// TermViewPublic omits identifiers and quiz alternatives.
	TermViewPublic TermView = "public"
	// TermViewAdmin returns every column.
	TermViewAdmin TermView = "admin"
)

// TermFilter captures validated, optional listing filters. Zero values mean "not supplied".
type TermFilter struct {
	CategoryID   *int64
	CategoryName string
	TermName     string
}

// PublicTerm is the read-only consumer projection.
type PublicTerm struct {
	CategoryName string `db:"category_name" json:"category_name"`
	TermName     string `db:"term_name" json:"term_name"`
	Definition   string `db:"definition" json:"definition"`
}

// AdminTerm is the full projection served to authenticated admins.
type AdminTerm struct {
	CategoryID   int64  `db:"category_id" json:"category_id"`
	CategoryName string `db:"category_name" json:"category_name"`
	TermID       int64  `db:"term_id" json:"term_id"`
	TermName     string `db:"term_name" json:"term_name"`
	Definition   string `db:"definition" json:"definition"`
	Alt1         string `db:"alt1" json:"alt1"`
	Alt2         string `db:"alt2" json:"alt2"`
	Alt3         string `db:"alt3" json:"alt3"`
	InQuiz       bool   `db:"inquiz" json:"inquiz"`
}

// DeriveInQuiz reports whether a term has every quiz distractor populated.
// It is false iff any alternative is exactly the empty string.
func DeriveInQuiz(alt1, alt2, alt3 string) bool {
	return alt1 != "" && alt2 != "" && alt3 != ""
}
