package models

// Category groups terms. Categories are managed out-of-band.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
