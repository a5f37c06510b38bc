package catalog

import (
	"context"
	"errors"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/apperrors"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

const genreTakenMessage = "Genre name already exists"

type GenreDetail struct {
	Genre models.Genre
	Books []models.Book
}

func (s *Service) Genres(ctx context.Context) ([]models.Genre, error) {
	return s.store.Genres.FindMany(ctx, nil, "name")
}

func (s *Service) Genre(ctx context.Context, id string) (GenreDetail, error) {
	var (
		genre *models.Genre
		books []models.Book
	)
	err := s.fetch.Fetch(ctx, "genre_detail",
		aggregate.One("genre", &genre, s.findGenre(id)),
		aggregate.Many("books", &books, s.booksIn(id)),
	)
	if err != nil {
		return GenreDetail{}, err
	}
	return GenreDetail{Genre: *genre, Books: books}, nil
}

func (s *Service) EditGenre(ctx context.Context, id string) (Form[forms.GenreInput], error) {
	var genre *models.Genre
	if err := s.fetch.Fetch(ctx, "genre_form", aggregate.One("genre", &genre, s.findGenre(id))); err != nil {
		return Form[forms.GenreInput]{}, err
	}
	return Form[forms.GenreInput]{Input: forms.FromGenre(*genre)}, nil
}

// CreateGenre stores a new genre. When a genre with the same name exists the
// form resolves to it instead and nothing is inserted.
func (s *Service) CreateGenre(ctx context.Context, raw forms.Raw) (Form[forms.GenreInput], error) {
	in, violations := s.forms.Genre(raw, true)
	f := Form[forms.GenreInput]{Input: in, Violations: violations}
	if len(violations) > 0 {
		return f, nil
	}

	existing, err := s.store.Genres.FindOne(ctx, store.Filter{"name": in.Name})
	if err != nil {
		return f, err
	}
	if existing != nil {
		f.Location = existing.URL()
		return f, nil
	}

	genre := in.Model()
	_, err = s.store.Genres.Insert(ctx, &genre)
	if errors.Is(err, apperrors.ErrConflict) {
		// Lost a race with a concurrent create of the same name.
		existing, err = s.store.Genres.FindOne(ctx, store.Filter{"name": in.Name})
		if err == nil && existing == nil {
			err = apperrors.Conflict("genre " + in.Name + " vanished after conflict")
		}
		if err != nil {
			return f, err
		}
		f.Location = existing.URL()
		return f, nil
	}
	if err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "genre created", "id", genre.ID, "name", genre.Name)
	f.Location = genre.URL()
	return f, nil
}

// UpdateGenre renames genre id. Taking the name of another genre is a
// violation on the name field.
func (s *Service) UpdateGenre(ctx context.Context, id string, raw forms.Raw) (Form[forms.GenreInput], error) {
	in, violations := s.forms.Genre(raw, false)
	f := Form[forms.GenreInput]{Input: in, Violations: violations}
	if len(violations) == 0 {
		taken, err := s.store.Genres.FindOne(ctx, store.Filter{"name": in.Name})
		if err != nil {
			return f, err
		}
		if taken != nil && taken.ID != id {
			f.Violations = []forms.Violation{{Field: "name", Message: genreTakenMessage, Value: in.Name}}
		}
	}
	if len(f.Violations) > 0 {
		var current *models.Genre
		err := s.fetch.Fetch(ctx, "genre_form", aggregate.One("genre", &current, s.findGenre(id)))
		return f, err
	}

	genre := in.Model()
	_, err := s.store.Genres.UpdateByID(ctx, id, &genre)
	if errors.Is(err, apperrors.ErrConflict) {
		f.Violations = []forms.Violation{{Field: "name", Message: genreTakenMessage, Value: in.Name}}
		return f, nil
	}
	if err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "genre updated", "id", id)
	f.Location = models.Genre{ID: id}.URL()
	return f, nil
}

func (s *Service) DeleteGenre(ctx context.Context, id string, confirm bool) (Deletion[models.Genre, models.Book], error) {
	d, err := guardedDelete[models.Genre, models.Book]{
		view:       "genre_delete",
		listing:    models.GenresURL,
		find:       s.findGenre(id),
		dependents: s.booksIn(id),
		remove:     func(ctx context.Context) error { return s.store.Genres.DeleteByID(ctx, id) },
	}.run(ctx, s, confirm)
	if err == nil && d.State == DeleteDone && !d.Missing {
		s.log.InfoContext(ctx, "genre deleted", "id", id)
	}
	return d, err
}

func (s *Service) findGenre(id string) func(context.Context) (*models.Genre, error) {
	return func(ctx context.Context) (*models.Genre, error) {
		return s.store.Genres.FindByID(ctx, id)
	}
}

func (s *Service) booksIn(genreID string) func(context.Context) ([]models.Book, error) {
	return func(ctx context.Context) ([]models.Book, error) {
		return s.store.Books.FindMany(ctx, store.Filter{"genre": genreID}, "title")
	}
}
