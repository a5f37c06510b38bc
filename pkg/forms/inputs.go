package forms

import (
	"strings"
	"time"

	"locallibrary/pkg/models"
)

// Limits match the column sizes in models.
const (
	nameMax = "100"
	isbnMax = "32"
)

var authorRules = []Rule{
	{Field: "first_name", Tag: "required", Message: "First name must be specified"},
	{Field: "first_name", Tag: "alphanum", Message: "First name cannot contain non-alphanumeric characters", Optional: true},
	{Field: "first_name", Tag: "max=" + nameMax, Message: "First name must not exceed 100 characters", Optional: true, Stored: true},
	{Field: "family_name", Tag: "required", Message: "Family name must be specified"},
	{Field: "family_name", Tag: "alphanum", Message: "Family name cannot contain non-alphanumeric characters", Optional: true},
	{Field: "family_name", Tag: "max=" + nameMax, Message: "Family name must not exceed 100 characters", Optional: true, Stored: true},
	{Field: "date_of_birth", Tag: "iso8601", Message: "Invalid date of birth", Optional: true},
	{Field: "date_of_death", Tag: "iso8601", Message: "Invalid date of death", Optional: true},
}

var bookRules = []Rule{
	{Field: "title", Tag: "required", Message: "Title must not be empty"},
	{Field: "author", Tag: "required", Message: "Author must not be empty"},
	{Field: "summary", Tag: "required", Message: "Summary must not be empty"},
	{Field: "isbn", Tag: "required", Message: "ISBN must not be empty"},
	{Field: "isbn", Tag: "max=" + isbnMax, Message: "ISBN must not exceed 32 characters", Optional: true, Stored: true},
}

var instanceRules = []Rule{
	{Field: "book", Tag: "required", Message: "Book must be specified"},
	{Field: "imprint", Tag: "required", Message: "Imprint must be specified"},
	{Field: "due_back", Tag: "iso8601", Message: "Invalid date", Optional: true},
	{Field: "status", Tag: "oneof=Available Maintenance Loaned Reserved", Message: "Invalid status", Optional: true},
}

// AuthorInput is a sanitized author form.
type AuthorInput struct {
	FirstName   string `json:"first_name"`
	FamilyName  string `json:"family_name"`
	DateOfBirth string `json:"date_of_birth"`
	DateOfDeath string `json:"date_of_death"`

	birth, death *time.Time
}

func (p *Pipeline) Author(raw Raw) (AuthorInput, []Violation) {
	values := raw.strings("first_name", "family_name", "date_of_birth", "date_of_death")
	violations := p.Check(values, authorRules)

	in := AuthorInput{
		FirstName:  Clean(values["first_name"]),
		FamilyName: Clean(values["family_name"]),
	}
	in.birth, in.DateOfBirth = cleanDate(values["date_of_birth"])
	in.death, in.DateOfDeath = cleanDate(values["date_of_death"])
	return in, violations
}

func (in AuthorInput) Model() models.Author {
	return models.Author{
		FirstName:   in.FirstName,
		FamilyName:  in.FamilyName,
		DateOfBirth: in.birth,
		DateOfDeath: in.death,
	}
}

type GenreInput struct {
	Name string `json:"name"`
}

// Genre validates a genre form. Creation and rename word the missing name
// differently.
func (p *Pipeline) Genre(raw Raw, creating bool) (GenreInput, []Violation) {
	msg := "Genre name must be specified"
	if creating {
		msg = "Genre name required"
	}
	values := raw.strings("name")
	violations := p.Check(values, []Rule{
		{Field: "name", Tag: "required", Message: msg},
		{Field: "name", Tag: "max=" + nameMax, Message: "Genre name must not exceed 100 characters", Optional: true, Stored: true},
	})
	return GenreInput{Name: Clean(values["name"])}, violations
}

func (in GenreInput) Model() models.Genre {
	return models.Genre{Name: in.Name}
}

type BookInput struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	Summary string   `json:"summary"`
	ISBN    string   `json:"isbn"`
	Genre   []string `json:"genre"`
}

// Book validates a book form. The genre field is normalized to a list first.
func (p *Pipeline) Book(raw Raw) (BookInput, []Violation) {
	genres := raw.List("genre")
	values := raw.strings("title", "author", "summary", "isbn")
	violations := p.Check(values, bookRules)

	in := BookInput{
		Title:   Clean(values["title"]),
		Author:  Clean(values["author"]),
		Summary: Clean(values["summary"]),
		ISBN:    Clean(values["isbn"]),
		Genre:   make([]string, 0, len(genres)),
	}
	for _, g := range genres {
		if g = Clean(g); g != "" {
			in.Genre = append(in.Genre, g)
		}
	}
	return in, violations
}

func (in BookInput) Model() models.Book {
	b := models.Book{
		Title:    in.Title,
		AuthorID: in.Author,
		Summary:  in.Summary,
		ISBN:     in.ISBN,
		Genres:   make([]models.Genre, 0, len(in.Genre)),
	}
	for _, id := range in.Genre {
		b.Genres = append(b.Genres, models.Genre{ID: id})
	}
	return b
}

// Checked reports whether the form selected genre id.
func (in BookInput) Checked(id string) bool {
	for _, g := range in.Genre {
		if g == id {
			return true
		}
	}
	return false
}

type InstanceInput struct {
	Book    string        `json:"book"`
	Imprint string        `json:"imprint"`
	Status  models.Status `json:"status"`
	DueBack string        `json:"due_back"`

	dueBack time.Time
}

// Instance validates a copy form. An empty status means Maintenance and an
// empty due date means now.
func (p *Pipeline) Instance(raw Raw, now time.Time) (InstanceInput, []Violation) {
	values := raw.strings("book", "imprint", "status", "due_back")
	violations := p.Check(values, instanceRules)

	in := InstanceInput{
		Book:    Clean(values["book"]),
		Imprint: Clean(values["imprint"]),
		Status:  models.Status(Clean(values["status"])),
	}
	if in.Status == "" {
		in.Status = models.StatusMaintenance
	}
	due, echo := cleanDate(values["due_back"])
	switch {
	case due != nil:
		in.dueBack, in.DueBack = *due, echo
	case echo == "":
		in.dueBack, in.DueBack = now, models.FormatForm(now)
	default:
		in.DueBack = echo
	}
	return in, violations
}

func (in InstanceInput) Model() models.BookInstance {
	return models.BookInstance{
		BookID:  in.Book,
		Imprint: in.Imprint,
		Status:  in.Status,
		DueBack: in.dueBack,
	}
}

func (r Raw) strings(keys ...string) map[string]string {
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		values[k] = strings.TrimSpace(r.String(k))
	}
	return values
}

// FromAuthor fills a form from a stored author.
func FromAuthor(a models.Author) AuthorInput {
	return AuthorInput{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: a.DateOfBirthForm(),
		DateOfDeath: a.DateOfDeathForm(),
		birth:       a.DateOfBirth,
		death:       a.DateOfDeath,
	}
}

func FromGenre(g models.Genre) GenreInput {
	return GenreInput{Name: g.Name}
}

func FromBook(b models.Book) BookInput {
	return BookInput{
		Title:   b.Title,
		Author:  b.AuthorID,
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genre:   b.GenreIDs(),
	}
}

func FromInstance(bi models.BookInstance) InstanceInput {
	return InstanceInput{
		Book:    bi.BookID,
		Imprint: bi.Imprint,
		Status:  bi.Status,
		DueBack: bi.DueBackForm(),
		dueBack: bi.DueBack,
	}
}
