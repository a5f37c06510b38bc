package catalog

import (
	"context"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

type BookDetail struct {
	Book      models.Book
	Instances []models.BookInstance
}

func (s *Service) Books(ctx context.Context) ([]models.Book, error) {
	return s.store.Books.FindMany(ctx, nil, "title")
}

// Book loads a book, with its author and genres, and its copies.
func (s *Service) Book(ctx context.Context, id string) (BookDetail, error) {
	var (
		book   *models.Book
		copies []models.BookInstance
	)
	err := s.fetch.Fetch(ctx, "book_detail",
		aggregate.One("book", &book, s.findBook(id)),
		aggregate.Many("instances", &copies, s.copiesOf(id)),
	)
	if err != nil {
		return BookDetail{}, err
	}
	return BookDetail{Book: *book, Instances: copies}, nil
}

// NewBookForm loads the author and genre choices for an empty book form.
func (s *Service) NewBookForm(ctx context.Context) (BookForm, error) {
	f := BookForm{Form: Form[forms.BookInput]{Input: forms.BookInput{Genre: []string{}}}}
	if err := s.bookChoices(ctx, &f); err != nil {
		return BookForm{}, err
	}
	return f, nil
}

// EditBook fills the update form from the stored book with its genres
// checked.
func (s *Service) EditBook(ctx context.Context, id string) (BookForm, error) {
	var f BookForm
	var book *models.Book
	if err := s.bookChoices(ctx, &f, aggregate.One("book", &book, s.findBook(id))); err != nil {
		return BookForm{}, err
	}
	f.Input = forms.FromBook(*book)
	f.Genres = checkGenres(f.Genres, f.Input)
	return f, nil
}

func (s *Service) CreateBook(ctx context.Context, raw forms.Raw) (BookForm, error) {
	in, violations := s.forms.Book(raw)
	f := BookForm{Form: Form[forms.BookInput]{Input: in, Violations: violations}}
	if len(violations) > 0 {
		return s.redisplayBook(ctx, f)
	}

	book := in.Model()
	if _, err := s.store.Books.Insert(ctx, &book); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "book created", "id", book.ID)
	f.Location = book.URL()
	return f, nil
}

func (s *Service) UpdateBook(ctx context.Context, id string, raw forms.Raw) (BookForm, error) {
	in, violations := s.forms.Book(raw)
	f := BookForm{Form: Form[forms.BookInput]{Input: in, Violations: violations}}
	if len(violations) > 0 {
		var current *models.Book
		return s.redisplayBook(ctx, f, aggregate.One("book", &current, s.findBook(id)))
	}

	book := in.Model()
	if _, err := s.store.Books.UpdateByID(ctx, id, &book); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "book updated", "id", id)
	f.Location = models.Book{ID: id}.URL()
	return f, nil
}

// DeleteBook removes book id unless copies of it exist.
func (s *Service) DeleteBook(ctx context.Context, id string, confirm bool) (Deletion[models.Book, models.BookInstance], error) {
	d, err := guardedDelete[models.Book, models.BookInstance]{
		view:       "book_delete",
		listing:    models.BooksURL,
		find:       s.findBook(id),
		dependents: s.copiesOf(id),
		remove:     func(ctx context.Context) error { return s.store.Books.DeleteByID(ctx, id) },
	}.run(ctx, s, confirm)
	if err == nil && d.State == DeleteDone && !d.Missing {
		s.log.InfoContext(ctx, "book deleted", "id", id)
	}
	return d, err
}

func (s *Service) redisplayBook(ctx context.Context, f BookForm, primary ...aggregate.Lookup) (BookForm, error) {
	if err := s.bookChoices(ctx, &f, primary...); err != nil {
		return f, err
	}
	f.Genres = checkGenres(f.Genres, f.Input)
	return f, nil
}

// bookChoices loads every author and genre into f. A primary lookup, when
// given, runs in the same fetch and must find its entity.
func (s *Service) bookChoices(ctx context.Context, f *BookForm, primary ...aggregate.Lookup) error {
	var (
		authors []models.Author
		genres  []models.Genre
	)
	choices := []aggregate.Lookup{
		aggregate.Many("authors", &authors, func(ctx context.Context) ([]models.Author, error) {
			return s.store.Authors.FindMany(ctx, nil, "family_name")
		}),
		aggregate.Many("genres", &genres, func(ctx context.Context) ([]models.Genre, error) {
			return s.store.Genres.FindMany(ctx, nil, "name")
		}),
	}

	var err error
	if len(primary) > 0 {
		err = s.fetch.Fetch(ctx, "book_form", primary[0], choices...)
	} else {
		err = s.fetch.Gather(ctx, "book_form", choices...)
	}
	if err != nil {
		return err
	}

	f.Authors = authors
	f.Genres = make([]GenreOption, 0, len(genres))
	for _, g := range genres {
		f.Genres = append(f.Genres, GenreOption{Genre: g})
	}
	return nil
}

func checkGenres(options []GenreOption, in forms.BookInput) []GenreOption {
	for i := range options {
		options[i].Checked = in.Checked(options[i].ID)
	}
	return options
}

func (s *Service) findBook(id string) func(context.Context) (*models.Book, error) {
	return func(ctx context.Context) (*models.Book, error) {
		return s.store.Books.FindByID(ctx, id)
	}
}

func (s *Service) copiesOf(bookID string) func(context.Context) ([]models.BookInstance, error) {
	return func(ctx context.Context) ([]models.BookInstance, error) {
		return s.store.Instances.FindMany(ctx, store.Filter{"book": bookID}, "")
	}
}
