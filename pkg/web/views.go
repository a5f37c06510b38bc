package web

import (
	"time"

	"locallibrary/pkg/catalog"
	"locallibrary/pkg/models"

	"github.com/gin-gonic/gin"
)

// Presenters add the derived attributes views display to stored entities.

func authorView(a models.Author, now time.Time) gin.H {
	return gin.H{
		"id":                      a.ID,
		"first_name":              a.FirstName,
		"family_name":             a.FamilyName,
		"name":                    a.Name(),
		"lifespan":                a.Lifespan(now),
		"date_of_birth":           a.DateOfBirthForm(),
		"date_of_death":           a.DateOfDeathForm(),
		"date_of_birth_formatted": a.DateOfBirthFormatted(),
		"date_of_death_formatted": a.DateOfDeathFormatted(),
		"url":                     a.URL(),
	}
}

func genreView(g models.Genre) gin.H {
	return gin.H{"id": g.ID, "name": g.Name, "url": g.URL()}
}

func bookView(b models.Book, now time.Time) gin.H {
	v := gin.H{
		"id":      b.ID,
		"title":   b.Title,
		"summary": b.Summary,
		"isbn":    b.ISBN,
		"url":     b.URL(),
		"author":  nil,
		"genre":   mapViews(b.Genres, genreView),
	}
	if b.Author != nil {
		v["author"] = authorView(*b.Author, now)
	}
	return v
}

func instanceView(bi models.BookInstance, now time.Time) gin.H {
	v := gin.H{
		"id":                 bi.ID,
		"imprint":            bi.Imprint,
		"status":             bi.Status,
		"due_back":           bi.DueBackForm(),
		"due_back_formatted": bi.DueBackFormatted(),
		"url":                bi.URL(),
		"book":               nil,
	}
	if bi.Book != nil {
		v["book"] = bookView(*bi.Book, now)
	}
	return v
}

func genreOptionView(o catalog.GenreOption) gin.H {
	v := genreView(o.Genre)
	v["checked"] = o.Checked
	return v
}

func mapViews[T any](items []T, view func(T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, view(item))
	}
	return out
}

func withNow[T any](now time.Time, view func(T, time.Time) gin.H) func(T) gin.H {
	return func(item T) gin.H { return view(item, now) }
}
