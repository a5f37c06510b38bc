// Package store persists the catalog's four entity kinds.
package store

import (
	"context"

	"locallibrary/pkg/models"

	"gorm.io/gorm"
)

// Store groups the catalog collections over one database handle.
type Store struct {
	db *gorm.DB

	Authors   *Collection[models.Author]
	Genres    *Collection[models.Genre]
	Books     *Collection[models.Book]
	Instances *Collection[models.BookInstance]
}

func New(db *gorm.DB) *Store {
	return &Store{
		db: db,
		Authors: &Collection[models.Author]{
			db:   db,
			kind: "author",
			columns: map[string]string{
				"first_name":  "first_name",
				"family_name": "family_name",
			},
		},
		Genres: &Collection[models.Genre]{
			db:      db,
			kind:    "genre",
			columns: map[string]string{"name": "name"},
		},
		Books: &Collection[models.Book]{
			db:   db,
			kind: "book",
			columns: map[string]string{
				"title":  "title",
				"author": "author_id",
				"isbn":   "isbn",
			},
			related:      map[string]relation{"genre": booksInGenre},
			preloads:     []string{"Author", "Genres"},
			afterWrite:   syncBookGenres,
			beforeDelete: clearBookGenres,
		},
		Instances: &Collection[models.BookInstance]{
			db:   db,
			kind: "bookinstance",
			columns: map[string]string{
				"book":     "book_id",
				"status":   "status",
				"imprint":  "imprint",
				"due_back": "due_back",
			},
			preloads: []string{"Book"},
		},
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func booksInGenre(tx, root *gorm.DB, genreID any) *gorm.DB {
	sub := root.Session(&gorm.Session{NewDB: true}).
		Model(&models.BookGenre{}).
		Select("book_id").
		Where("genre_id = ?", genreID)
	return tx.Where("id IN (?)", sub)
}

// syncBookGenres makes the join rows of a book match its genre set.
func syncBookGenres(tx *gorm.DB, bookID string, book *models.Book) error {
	if err := clearBookGenres(tx, bookID); err != nil {
		return err
	}
	if len(book.Genres) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(book.Genres))
	rows := make([]models.BookGenre, 0, len(book.Genres))
	for _, g := range book.Genres {
		if g.ID == "" || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		rows = append(rows, models.BookGenre{BookID: bookID, GenreID: g.ID})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func clearBookGenres(tx *gorm.DB, bookID string) error {
	return tx.Where("book_id = ?", bookID).Delete(&models.BookGenre{}).Error
}
