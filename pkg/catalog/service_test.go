package catalog

import (
	"context"
	"testing"
	"time"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/apperrors"
	"locallibrary/pkg/database"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/logger"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type testCatalog struct {
	*Service
	db    *gorm.DB
	store *store.Store
}

func setupTestCatalog(t *testing.T) *testCatalog {
	t.Helper()
	db, err := database.OpenMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	st := store.New(db)
	svc := NewService(st,
		aggregate.NewFetcher(aggregate.WithTimeout(5*time.Second)),
		forms.NewPipeline(),
		logger.Discard(),
		WithClock(func() time.Time { return testNow }),
	)
	return &testCatalog{Service: svc, db: db, store: st}
}

func (c *testCatalog) author(t *testing.T, first, family string) models.Author {
	t.Helper()
	a := models.Author{FirstName: first, FamilyName: family}
	_, err := c.store.Authors.Insert(context.Background(), &a)
	require.NoError(t, err)
	return a
}

func (c *testCatalog) genre(t *testing.T, name string) models.Genre {
	t.Helper()
	g := models.Genre{Name: name}
	_, err := c.store.Genres.Insert(context.Background(), &g)
	require.NoError(t, err)
	return g
}

func (c *testCatalog) book(t *testing.T, title, authorID string, genres ...models.Genre) models.Book {
	t.Helper()
	b := models.Book{Title: title, AuthorID: authorID, Summary: "summary", ISBN: "isbn", Genres: genres}
	_, err := c.store.Books.Insert(context.Background(), &b)
	require.NoError(t, err)
	return b
}

func (c *testCatalog) instance(t *testing.T, bookID string, status models.Status) models.BookInstance {
	t.Helper()
	bi := models.BookInstance{BookID: bookID, Imprint: "imprint", Status: status}
	_, err := c.store.Instances.Insert(context.Background(), &bi)
	require.NoError(t, err)
	return bi
}

func (c *testCatalog) closeDB(t *testing.T) {
	t.Helper()
	sqlDB, err := c.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestIndexCounts(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Ursula", "LeGuin")
	c.genre(t, "Fantasy")
	b := c.book(t, "Earthsea", a.ID)
	c.instance(t, b.ID, models.StatusAvailable)
	c.instance(t, b.ID, models.StatusLoaned)

	counts, err := c.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{Books: 1, Instances: 2, AvailableInstances: 1, Authors: 1, Genres: 1}, counts)
}

func TestIndexStoreFailure(t *testing.T) {
	c := setupTestCatalog(t)
	c.closeDB(t)

	_, err := c.Index(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStore)
}

func TestAuthorDetail(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Frank", "Herbert")
	c.book(t, "Dune", a.ID)
	c.book(t, "Children of Dune", a.ID)
	c.book(t, "Other", "someone-else")

	detail, err := c.Author(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Herbert", detail.Author.FamilyName)
	require.Len(t, detail.Books, 2)
	assert.Equal(t, "Children of Dune", detail.Books[0].Title)

	_, err = c.Author(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBookDetailFansOut(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Frank", "Herbert")
	g := c.genre(t, "Science Fiction")
	b := c.book(t, "Dune", a.ID, g)
	c.instance(t, b.ID, models.StatusAvailable)

	detail, err := c.Book(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Book.Author)
	assert.Equal(t, "Herbert, Frank", detail.Book.Author.Name())
	require.Len(t, detail.Book.Genres, 1)
	assert.Equal(t, "Science Fiction", detail.Book.Genres[0].Name)
	assert.Len(t, detail.Instances, 1)
}

func TestBookDetailNotFoundHasNoPartialData(t *testing.T) {
	c := setupTestCatalog(t)
	c.instance(t, "ghost", models.StatusAvailable)

	detail, err := c.Book(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, detail.Instances)
	assert.Empty(t, detail.Book.ID)
}

func TestDeleteAuthorBlockedThenDone(t *testing.T) {
	c := setupTestCatalog(t)
	ctx := context.Background()
	a := c.author(t, "Frank", "Herbert")
	b := c.book(t, "Dune", a.ID)

	for i := 0; i < 2; i++ {
		d, err := c.DeleteAuthor(ctx, a.ID, true)
		require.NoError(t, err)
		assert.Equal(t, DeleteBlocked, d.State)
		require.Len(t, d.Dependents, 1)
		assert.Equal(t, "Dune", d.Dependents[0].Title)

		still, err := c.store.Authors.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.NotNil(t, still)
	}

	require.NoError(t, c.store.Books.DeleteByID(ctx, b.ID))

	d, err := c.DeleteAuthor(ctx, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DeleteDone, d.State)
	assert.False(t, d.Missing)
	assert.Equal(t, models.AuthorsURL, d.Location)

	gone, err := c.store.Authors.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteConfirmationDoesNotDelete(t *testing.T) {
	c := setupTestCatalog(t)
	ctx := context.Background()
	g := c.genre(t, "Poetry")

	d, err := c.DeleteGenre(ctx, g.ID, false)
	require.NoError(t, err)
	assert.Equal(t, DeleteFetching, d.State)
	require.NotNil(t, d.Entity)
	assert.Equal(t, "Poetry", d.Entity.Name)
	assert.Empty(t, d.Dependents)

	still, err := c.store.Genres.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestDeleteGenreBlockedByBooks(t *testing.T) {
	c := setupTestCatalog(t)
	g := c.genre(t, "Poetry")
	c.book(t, "Odes", "a", g)

	d, err := c.DeleteGenre(context.Background(), g.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DeleteBlocked, d.State)
	assert.Len(t, d.Dependents, 1)
}

func TestDeleteBookBlockedByInstances(t *testing.T) {
	c := setupTestCatalog(t)
	b := c.book(t, "Dune", "a")
	c.instance(t, b.ID, models.StatusMaintenance)

	d, err := c.DeleteBook(context.Background(), b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DeleteBlocked, d.State)
	assert.Equal(t, "blocked", d.State.String())
}

func TestDeleteMissingRedirectsToListing(t *testing.T) {
	c := setupTestCatalog(t)

	d, err := c.DeleteBook(context.Background(), "missing", false)
	require.NoError(t, err)
	assert.Equal(t, DeleteDone, d.State)
	assert.True(t, d.Missing)
	assert.Equal(t, models.BooksURL, d.Location)

	di, err := c.DeleteInstance(context.Background(), "missing", true)
	require.NoError(t, err)
	assert.True(t, di.Missing)
	assert.Equal(t, models.InstancesURL, di.Location)
}

func TestDeleteInstance(t *testing.T) {
	c := setupTestCatalog(t)
	bi := c.instance(t, "b", models.StatusLoaned)

	d, err := c.DeleteInstance(context.Background(), bi.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DeleteDone, d.State)
	assert.False(t, d.Missing)
}

func TestDeleteStoreFailure(t *testing.T) {
	c := setupTestCatalog(t)
	c.closeDB(t)

	d, err := c.DeleteAuthor(context.Background(), "x", true)
	assert.ErrorIs(t, err, apperrors.ErrStore)
	assert.Equal(t, DeleteFailed, d.State)
}

func TestCreateAuthor(t *testing.T) {
	c := setupTestCatalog(t)

	f, err := c.CreateAuthor(context.Background(), forms.Raw{"first_name": "Jane", "family_name": "Austen", "date_of_birth": "1775-12-16"})
	require.NoError(t, err)
	require.True(t, f.Saved())
	assert.Empty(t, f.Violations)

	authors, err := c.Authors(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, authors[0].URL(), f.Location)
	assert.Equal(t, "251", authors[0].Lifespan(testNow))
}

func TestCreateAuthorViolationsPersistNothing(t *testing.T) {
	c := setupTestCatalog(t)

	f, err := c.CreateAuthor(context.Background(), forms.Raw{"first_name": "J@ne", "family_name": ""})
	require.NoError(t, err)
	assert.False(t, f.Saved())
	assert.Len(t, f.Violations, 2)
	assert.Equal(t, "J@ne", f.Input.FirstName)

	n, err := c.store.Authors.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateAuthorKeepsIdentifier(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Jane", "Austin")

	f, err := c.UpdateAuthor(context.Background(), a.ID, forms.Raw{"first_name": "Jane", "family_name": "Austen", "id": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, a.URL(), f.Location)

	got, err := c.store.Authors.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Austen", got.FamilyName)

	_, err = c.UpdateAuthor(context.Background(), "missing", forms.Raw{"first_name": "A", "family_name": "B"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateMissingWithInvalidFormIsNotFound(t *testing.T) {
	c := setupTestCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		update func() error
	}{
		{"author", func() error {
			_, err := c.UpdateAuthor(ctx, "missing", forms.Raw{"first_name": ""})
			return err
		}},
		{"genre", func() error {
			_, err := c.UpdateGenre(ctx, "missing", forms.Raw{})
			return err
		}},
		{"book", func() error {
			_, err := c.UpdateBook(ctx, "missing", forms.Raw{"title": "T"})
			return err
		}},
		{"bookinstance", func() error {
			_, err := c.UpdateInstance(ctx, "missing", forms.Raw{"imprint": "I"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.update(), apperrors.ErrNotFound)
		})
	}
}

func TestUpdateGenreTakenNameOnMissingGenre(t *testing.T) {
	c := setupTestCatalog(t)
	c.genre(t, "Fantasy")

	_, err := c.UpdateGenre(context.Background(), "missing", forms.Raw{"name": "Fantasy"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateInvalidFormRedisplaysExisting(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Mary", "Shelley")
	b := c.book(t, "Frankenstein", a.ID)

	af, err := c.UpdateAuthor(context.Background(), a.ID, forms.Raw{"first_name": "M@ry", "family_name": "Shelley"})
	require.NoError(t, err)
	assert.False(t, af.Saved())
	require.Len(t, af.Violations, 1)

	bf, err := c.UpdateBook(context.Background(), b.ID, forms.Raw{"title": "Frankenstein"})
	require.NoError(t, err)
	assert.False(t, bf.Saved())
	assert.Len(t, bf.Authors, 1)
}

func TestEditAuthorMissing(t *testing.T) {
	c := setupTestCatalog(t)

	_, err := c.EditAuthor(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateGenreReusesExisting(t *testing.T) {
	c := setupTestCatalog(t)
	existing := c.genre(t, "Fantasy")

	f, err := c.CreateGenre(context.Background(), forms.Raw{"name": " Fantasy "})
	require.NoError(t, err)
	assert.Equal(t, existing.URL(), f.Location)

	n, err := c.store.Genres.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdateGenreNameTaken(t *testing.T) {
	c := setupTestCatalog(t)
	c.genre(t, "Fantasy")
	horror := c.genre(t, "Horror")

	f, err := c.UpdateGenre(context.Background(), horror.ID, forms.Raw{"name": "Fantasy"})
	require.NoError(t, err)
	assert.False(t, f.Saved())
	require.Len(t, f.Violations, 1)
	assert.Equal(t, "name", f.Violations[0].Field)

	f, err = c.UpdateGenre(context.Background(), horror.ID, forms.Raw{"name": "Horror"})
	require.NoError(t, err)
	assert.Equal(t, horror.URL(), f.Location)
}

func TestCreateBookRedisplayChecksGenres(t *testing.T) {
	c := setupTestCatalog(t)
	c.author(t, "Frank", "Herbert")
	sf := c.genre(t, "Science Fiction")
	c.genre(t, "Romance")

	f, err := c.CreateBook(context.Background(), forms.Raw{"title": "Dune", "genre": sf.ID})
	require.NoError(t, err)
	assert.False(t, f.Saved())
	assert.Len(t, f.Violations, 3)
	assert.Len(t, f.Authors, 1)
	require.Len(t, f.Genres, 2)
	assert.Equal(t, "Romance", f.Genres[0].Name)
	assert.False(t, f.Genres[0].Checked)
	assert.True(t, f.Genres[1].Checked)
}

func TestCreateAndEditBook(t *testing.T) {
	c := setupTestCatalog(t)
	a := c.author(t, "Frank", "Herbert")
	sf := c.genre(t, "Science Fiction")
	c.genre(t, "Romance")

	f, err := c.CreateBook(context.Background(), forms.Raw{
		"title": "Dune", "author": a.ID, "summary": "Spice", "isbn": "9780441013593",
		"genre": []string{sf.ID},
	})
	require.NoError(t, err)
	require.True(t, f.Saved())

	books, err := c.Books(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)

	edit, err := c.EditBook(context.Background(), books[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", edit.Input.Title)
	assert.Equal(t, []string{sf.ID}, edit.Input.Genre)
	for _, opt := range edit.Genres {
		assert.Equal(t, opt.ID == sf.ID, opt.Checked, opt.Name)
	}

	_, err = c.EditBook(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateInstanceWithoutBook(t *testing.T) {
	c := setupTestCatalog(t)
	c.book(t, "Dune", "a")

	f, err := c.CreateInstance(context.Background(), forms.Raw{"book": "", "imprint": "Ace"})
	require.NoError(t, err)
	assert.False(t, f.Saved())
	require.Len(t, f.Violations, 1)
	assert.Equal(t, "Book must be specified", f.Violations[0].Message)
	assert.Len(t, f.Books, 1)

	n, err := c.store.Instances.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateInstanceDefaultsDueBack(t *testing.T) {
	c := setupTestCatalog(t)
	b := c.book(t, "Dune", "a")

	f, err := c.CreateInstance(context.Background(), forms.Raw{"book": b.ID, "imprint": "Ace"})
	require.NoError(t, err)
	require.True(t, f.Saved())

	copies, err := c.store.Instances.FindMany(context.Background(), store.Filter{"book": b.ID}, "")
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, copies[0].URL(), f.Location)
	assert.True(t, copies[0].DueBack.Equal(testNow))
	assert.Equal(t, models.StatusMaintenance, copies[0].Status)
}

func TestEditAndUpdateInstance(t *testing.T) {
	c := setupTestCatalog(t)
	b := c.book(t, "Dune", "a")
	bi := c.instance(t, b.ID, models.StatusMaintenance)

	edit, err := c.EditInstance(context.Background(), bi.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, edit.Input.Book)
	assert.Len(t, edit.Books, 1)

	f, err := c.UpdateInstance(context.Background(), bi.ID, forms.Raw{"book": b.ID, "imprint": "Ace", "status": "Loaned", "due_back": "2026-11-01"})
	require.NoError(t, err)
	assert.Equal(t, bi.URL(), f.Location)

	got, err := c.Instance(context.Background(), bi.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLoaned, got.Status)
	require.NotNil(t, got.Book)
	assert.Equal(t, "Dune", got.Book.Title)
}
