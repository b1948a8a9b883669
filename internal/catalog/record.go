// Package catalog provides the in-memory program catalogue.
// Records are loaded once at startup and never mutated by the serving path;
// a record is identified by its zero-based row index for the lifetime of the
// store, matching the row order of the embeddings artifact.
package catalog

import (
	"strconv"
	"strings"
)

// ProgramRecord is one row of the program catalogue.
// All fields are optional; nil means the source cell was absent, blank or
// unparsable. The serving path must tolerate any missing field.
type ProgramRecord struct {
	Program    *string  `json:"program"`
	University *string  `json:"university_name"`
	Duration   *string  `json:"duration"`
	Fees       *float64 `json:"fees"`
	IELTS      *float64 `json:"ielts"`
	TOEFL      *float64 `json:"toefl"`
}

// Store is the immutable in-memory catalogue.
type Store struct {
	records []ProgramRecord
	path    string
}

// NewStore builds a catalogue from in-memory records, bypassing file loading.
func NewStore(records []ProgramRecord) *Store {
	return &Store{records: records}
}

// Len returns the number of records in the catalogue.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Get returns the record at the given row index.
func (s *Store) Get(i int) (ProgramRecord, bool) {
	if s == nil || i < 0 || i >= len(s.records) {
		return ProgramRecord{}, false
	}
	return s.records[i], true
}

// Records returns all records in row order. The returned slice is shared;
// callers must not mutate it.
func (s *Store) Records() []ProgramRecord {
	if s == nil {
		return nil
	}
	return s.records
}

// Path returns the file the catalogue was loaded from.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Description builds the embedding text for the record at row i.
// The index builder and any future re-embedding must use this exact shape so
// stored vectors stay comparable with query vectors.
func (s *Store) Description(i int) string {
	rec, ok := s.Get(i)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(derefString(rec.Program))
	b.WriteString(" at ")
	b.WriteString(derefString(rec.University))
	b.WriteString(" duration ")
	b.WriteString(derefString(rec.Duration))
	b.WriteString(" fees ")
	b.WriteString(formatFloatTerm(rec.Fees))
	b.WriteString(" ielts ")
	b.WriteString(formatFloatTerm(rec.IELTS))
	b.WriteString(" toefl ")
	b.WriteString(formatFloatTerm(rec.TOEFL))
	return b.String()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloatTerm(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
