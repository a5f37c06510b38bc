// Package catalog implements the catalog use cases: listings, detail pages,
// form submissions and guarded deletes over the entity store.
package catalog

import (
	"log/slog"
	"time"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

type Service struct {
	store *store.Store
	fetch *aggregate.Fetcher
	forms *forms.Pipeline
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for due dates and lifespans.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st *store.Store, fetcher *aggregate.Fetcher, pipeline *forms.Pipeline, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		fetch: fetcher,
		forms: pipeline,
		log:   log.With("component", "catalog"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Form is a create or update form after a GET or a submission. Location is
// set once the submission has been stored.
type Form[I any] struct {
	Input      I
	Violations []forms.Violation
	Location   string
}

func (f Form[I]) Saved() bool { return f.Location != "" }

// GenreOption is a genre checkbox on the book form.
type GenreOption struct {
	models.Genre
	Checked bool `json:"checked"`
}

type BookForm struct {
	Form[forms.BookInput]
	Authors []models.Author
	Genres  []GenreOption
}

type InstanceForm struct {
	Form[forms.InstanceInput]
	Books []models.Book
}
