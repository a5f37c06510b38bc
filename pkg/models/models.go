package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const catalogPrefix = "/catalog"

type Author struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	FamilyName  string     `gorm:"size:100;not null;index" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

type Genre struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Book struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"not null;index" json:"title"`
	AuthorID  string    `gorm:"size:36;not null;index" json:"author_id"`
	Author    *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Summary   string    `gorm:"type:text;not null" json:"summary"`
	ISBN      string    `gorm:"size:32;not null" json:"isbn"`
	Genres    []Genre   `gorm:"many2many:book_genres" json:"genre"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BookGenre is the join row between a book and one of its genres.
type BookGenre struct {
	BookID  string `gorm:"primaryKey;size:36"`
	GenreID string `gorm:"primaryKey;size:36;index"`
}

type BookInstance struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	BookID    string    `gorm:"size:36;not null;index" json:"book_id"`
	Book      *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Imprint   string    `gorm:"not null" json:"imprint"`
	Status    Status    `gorm:"size:20;not null;default:'Maintenance';index" json:"status"`
	DueBack   time.Time `json:"due_back"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (a *Author) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (g *Genre) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (bi *BookInstance) BeforeCreate(*gorm.DB) error {
	if bi.ID == "" {
		bi.ID = uuid.NewString()
	}
	if bi.Status == "" {
		bi.Status = StatusMaintenance
	}
	if bi.DueBack.IsZero() {
		bi.DueBack = time.Now()
	}
	return nil
}

func (a Author) PrimaryKey() string        { return a.ID }
func (g Genre) PrimaryKey() string         { return g.ID }
func (b Book) PrimaryKey() string          { return b.ID }
func (bi BookInstance) PrimaryKey() string { return bi.ID }

func (a Author) URL() string        { return catalogPrefix + "/author/" + a.ID }
func (g Genre) URL() string         { return catalogPrefix + "/genre/" + g.ID }
func (b Book) URL() string          { return catalogPrefix + "/book/" + b.ID }
func (bi BookInstance) URL() string { return catalogPrefix + "/bookinstance/" + bi.ID }

// Listing locations for each kind.
const (
	AuthorsURL   = catalogPrefix + "/authors"
	GenresURL    = catalogPrefix + "/genres"
	BooksURL     = catalogPrefix + "/books"
	InstancesURL = catalogPrefix + "/bookinstances"
)

// GenreIDs returns the identifiers of the book's genres in order.
func (b Book) GenreIDs() []string {
	ids := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}
