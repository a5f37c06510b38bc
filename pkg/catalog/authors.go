package catalog

import (
	"context"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

type AuthorDetail struct {
	Author models.Author
	Books  []models.Book
}

func (s *Service) Authors(ctx context.Context) ([]models.Author, error) {
	return s.store.Authors.FindMany(ctx, nil, "family_name")
}

// Author loads an author with the books written by them. A missing author
// is a not-found error.
func (s *Service) Author(ctx context.Context, id string) (AuthorDetail, error) {
	var (
		author *models.Author
		books  []models.Book
	)
	err := s.fetch.Fetch(ctx, "author_detail",
		aggregate.One("author", &author, s.findAuthor(id)),
		aggregate.Many("books", &books, s.booksBy(id)),
	)
	if err != nil {
		return AuthorDetail{}, err
	}
	return AuthorDetail{Author: *author, Books: books}, nil
}

// EditAuthor fills the update form from the stored author.
func (s *Service) EditAuthor(ctx context.Context, id string) (Form[forms.AuthorInput], error) {
	var author *models.Author
	if err := s.fetch.Fetch(ctx, "author_form", aggregate.One("author", &author, s.findAuthor(id))); err != nil {
		return Form[forms.AuthorInput]{}, err
	}
	return Form[forms.AuthorInput]{Input: forms.FromAuthor(*author)}, nil
}

func (s *Service) CreateAuthor(ctx context.Context, raw forms.Raw) (Form[forms.AuthorInput], error) {
	in, violations := s.forms.Author(raw)
	f := Form[forms.AuthorInput]{Input: in, Violations: violations}
	if len(violations) > 0 {
		return f, nil
	}

	author := in.Model()
	if _, err := s.store.Authors.Insert(ctx, &author); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "author created", "id", author.ID)
	f.Location = author.URL()
	return f, nil
}

// UpdateAuthor replaces the fields of author id, keeping its identifier. A
// missing author is a not-found error whether or not the form is valid.
func (s *Service) UpdateAuthor(ctx context.Context, id string, raw forms.Raw) (Form[forms.AuthorInput], error) {
	in, violations := s.forms.Author(raw)
	f := Form[forms.AuthorInput]{Input: in, Violations: violations}
	if len(violations) > 0 {
		var current *models.Author
		err := s.fetch.Fetch(ctx, "author_form", aggregate.One("author", &current, s.findAuthor(id)))
		return f, err
	}

	author := in.Model()
	if _, err := s.store.Authors.UpdateByID(ctx, id, &author); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "author updated", "id", id)
	f.Location = models.Author{ID: id}.URL()
	return f, nil
}

// DeleteAuthor removes author id unless books still reference it. Without
// confirm it only loads what the confirmation page shows.
func (s *Service) DeleteAuthor(ctx context.Context, id string, confirm bool) (Deletion[models.Author, models.Book], error) {
	d, err := guardedDelete[models.Author, models.Book]{
		view:       "author_delete",
		listing:    models.AuthorsURL,
		find:       s.findAuthor(id),
		dependents: s.booksBy(id),
		remove:     func(ctx context.Context) error { return s.store.Authors.DeleteByID(ctx, id) },
	}.run(ctx, s, confirm)
	if err == nil && d.State == DeleteDone && !d.Missing {
		s.log.InfoContext(ctx, "author deleted", "id", id)
	}
	return d, err
}

func (s *Service) findAuthor(id string) func(context.Context) (*models.Author, error) {
	return func(ctx context.Context) (*models.Author, error) {
		return s.store.Authors.FindByID(ctx, id)
	}
}

func (s *Service) booksBy(authorID string) func(context.Context) ([]models.Book, error) {
	return func(ctx context.Context) ([]models.Book, error) {
		return s.store.Books.FindMany(ctx, store.Filter{"author": authorID}, "title")
	}
}
