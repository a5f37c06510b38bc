package forms

import (
	"strings"
	"testing"
	"time"

	"locallibrary/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Field)
	}
	return out
}

func TestAuthorValid(t *testing.T) {
	p := NewPipeline()

	in, violations := p.Author(Raw{
		"first_name":    "  Isaac ",
		"family_name":   "Asimov",
		"date_of_birth": "1920-01-02",
		"date_of_death": "",
	})
	assert.Empty(t, violations)
	assert.Equal(t, "Isaac", in.FirstName)
	assert.Equal(t, "Asimov", in.FamilyName)
	assert.Equal(t, "1920-01-02", in.DateOfBirth)
	assert.Empty(t, in.DateOfDeath)

	a := in.Model()
	require.NotNil(t, a.DateOfBirth)
	assert.Equal(t, 1920, a.DateOfBirth.Year())
	assert.Nil(t, a.DateOfDeath)
	assert.Empty(t, a.ID)

	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"year", "1990", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"year and month", "1990-05", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"basic format", "19900501", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"minutes utc", "1990-05-01T10:00Z", time.Date(1990, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"minutes offset", "1990-05-01T12:00+02:00", time.Date(1990, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"fraction no zone", "1990-05-01T10:00:00.5", time.Date(1990, 5, 1, 10, 0, 0, 500000000, time.UTC)},
		{"rfc3339", "1990-05-01T10:00:00Z", time.Date(1990, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, violations := p.Author(Raw{"first_name": "Isaac", "family_name": "Asimov", "date_of_birth": tt.date})
			assert.Empty(t, violations)
			birth := in.Model().DateOfBirth
			require.NotNil(t, birth)
			assert.True(t, tt.want.Equal(*birth), "got %s", birth)
		})
	}
}

func TestAuthorNonAlphanumericFirstName(t *testing.T) {
	p := NewPipeline()

	for _, name := range []string{"Jean-Luc", "O'Brien", "<b>", "Anne Marie"} {
		t.Run(name, func(t *testing.T) {
			in, violations := p.Author(Raw{"first_name": name, "family_name": "Picard"})
			require.Len(t, violations, 1)
			assert.Equal(t, "first_name", violations[0].Field)
			assert.Equal(t, "First name cannot contain non-alphanumeric characters", violations[0].Message)
			assert.NotContains(t, in.FirstName, "<")
			assert.NotContains(t, in.FirstName, "'")
		})
	}
}

func TestAuthorAccumulatesViolations(t *testing.T) {
	p := NewPipeline()

	_, violations := p.Author(Raw{
		"first_name":    "   ",
		"family_name":   string(make([]byte, 101)),
		"date_of_birth": "not a date",
		"date_of_death": "1999-13-45",
	})
	assert.ElementsMatch(t,
		[]string{"first_name", "family_name", "family_name", "date_of_birth", "date_of_death"},
		fields(violations))
}

func TestAuthorLengthLimit(t *testing.T) {
	p := NewPipeline()
	long := ""
	for i := 0; i < 101; i++ {
		long += "a"
	}

	_, violations := p.Author(Raw{"first_name": long, "family_name": "Smith"})
	require.Len(t, violations, 1)
	assert.Equal(t, "First name must not exceed 100 characters", violations[0].Message)

	_, violations = p.Author(Raw{"first_name": long[:100], "family_name": "Smith"})
	assert.Empty(t, violations)
}

func TestInvalidDateIsEchoedEscaped(t *testing.T) {
	p := NewPipeline()

	in, violations := p.Author(Raw{"first_name": "A", "family_name": "B", "date_of_birth": "<soon>"})
	require.Len(t, violations, 1)
	assert.Equal(t, "Invalid date of birth", violations[0].Message)
	assert.Equal(t, "&lt;soon&gt;", in.DateOfBirth)
	assert.Nil(t, in.Model().DateOfBirth)
}

func TestGenreMessages(t *testing.T) {
	p := NewPipeline()

	_, violations := p.Genre(Raw{"name": ""}, true)
	require.Len(t, violations, 1)
	assert.Equal(t, "Genre name required", violations[0].Message)

	_, violations = p.Genre(Raw{}, false)
	require.Len(t, violations, 1)
	assert.Equal(t, "Genre name must be specified", violations[0].Message)

	in, violations := p.Genre(Raw{"name": " Sci & Fi "}, true)
	assert.Empty(t, violations)
	assert.Equal(t, "Sci &amp; Fi", in.Model().Name)
}

func TestLengthLimitsApplyToStoredValue(t *testing.T) {
	p := NewPipeline()

	_, violations := p.Genre(Raw{"name": strings.Repeat("g", 150)}, true)
	require.Len(t, violations, 1)
	assert.Equal(t, "Genre name must not exceed 100 characters", violations[0].Message)

	// Escaping grows each ampersand to five characters.
	_, violations = p.Genre(Raw{"name": strings.Repeat("&", 20)}, true)
	assert.Empty(t, violations)
	_, violations = p.Genre(Raw{"name": strings.Repeat("&", 21)}, true)
	assert.Equal(t, []string{"name"}, fields(violations))

	book := func(isbn string) Raw {
		return Raw{"title": "T", "author": "a1", "summary": "S", "isbn": isbn}
	}
	_, violations = p.Book(book(strings.Repeat("9", 32)))
	assert.Empty(t, violations)
	_, violations = p.Book(book(strings.Repeat("9", 40)))
	require.Len(t, violations, 1)
	assert.Equal(t, "isbn", violations[0].Field)
	assert.Equal(t, "ISBN must not exceed 32 characters", violations[0].Message)
	_, violations = p.Book(book(strings.Repeat("&", 7)))
	assert.Equal(t, []string{"isbn"}, fields(violations))
}

func TestBookGenreNormalization(t *testing.T) {
	p := NewPipeline()
	base := func(genre any) Raw {
		raw := Raw{"title": "T", "author": "a1", "summary": "S", "isbn": "1"}
		if genre != nil {
			raw["genre"] = genre
		}
		return raw
	}

	tests := []struct {
		name  string
		genre any
		want  []string
	}{
		{"missing", nil, []string{}},
		{"scalar", "g1", []string{"g1"}},
		{"form list", []string{"g1", "g2"}, []string{"g1", "g2"}},
		{"json list", []any{"g1", "g2", "g3"}, []string{"g1", "g2", "g3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, violations := p.Book(base(tt.genre))
			assert.Empty(t, violations)
			assert.Equal(t, tt.want, in.Genre)
			assert.Len(t, in.Model().Genres, len(tt.want))
		})
	}
}

func TestBookRequiredFields(t *testing.T) {
	p := NewPipeline()

	in, violations := p.Book(Raw{"genre": "g1"})
	assert.Equal(t, []string{"title", "author", "summary", "isbn"}, fields(violations))
	assert.True(t, in.Checked("g1"))
	assert.False(t, in.Checked("g2"))
}

func TestInstanceMissingBook(t *testing.T) {
	p := NewPipeline()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	in, violations := p.Instance(Raw{"book": "", "imprint": "Penguin"}, now)
	require.Len(t, violations, 1)
	assert.Equal(t, "book", violations[0].Field)
	assert.Equal(t, "Book must be specified", violations[0].Message)
	assert.Equal(t, "Penguin", in.Imprint)
}

func TestInstanceDefaults(t *testing.T) {
	p := NewPipeline()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	in, violations := p.Instance(Raw{"book": "b1", "imprint": "Penguin"}, now)
	assert.Empty(t, violations)
	assert.Equal(t, "2026-10-18", in.DueBack)

	bi := in.Model()
	assert.Equal(t, now, bi.DueBack)
	assert.Equal(t, models.StatusMaintenance, bi.Status)
	assert.Equal(t, "b1", bi.BookID)
}

func TestInstanceStatusAndDate(t *testing.T) {
	p := NewPipeline()
	now := time.Now()

	in, violations := p.Instance(Raw{"book": "b1", "imprint": "I", "status": "Loaned", "due_back": "2027-01-05"}, now)
	assert.Empty(t, violations)
	assert.Equal(t, models.StatusLoaned, in.Status)
	assert.Equal(t, 2027, in.Model().DueBack.Year())

	_, violations = p.Instance(Raw{"book": "b1", "imprint": "I", "status": "Lost", "due_back": "soon"}, now)
	assert.ElementsMatch(t, []string{"due_back", "status"}, fields(violations))
}

func TestRawString(t *testing.T) {
	raw := Raw{"a": []string{"x", "y"}, "b": []any{}, "c": 42.0}
	assert.Equal(t, "x", raw.String("a"))
	assert.Equal(t, "", raw.String("b"))
	assert.Equal(t, "42", raw.String("c"))
	assert.Equal(t, "", raw.String("missing"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&#x27;x&#x27;)&lt;&#x2F;script&gt;", Escape("<script>alert('x')</script>"))
	assert.Equal(t, "Tom &amp; Jerry", Clean("  Tom & Jerry "))
}
