package models

import "time"

// Term is a single word/definition pair stored for a language.
// A word with several definitions is stored as several terms.
type Term struct {
	ID         int64     `json:"id" db:"id"`
	Word       string    `json:"word" db:"word"`
	Definition string    `json:"definition" db:"definition"`
	Language   string    `json:"language" db:"language"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
