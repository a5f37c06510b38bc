package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

type seedBook struct {
	title   string
	author  int
	summary string
	isbn    string
	genres  []int
}

type seedCopy struct {
	book    int
	imprint string
	status  models.Status
	dueIn   time.Duration
}

var (
	seedAuthors = []models.Author{
		{FirstName: "Patrick", FamilyName: "Rothfuss", DateOfBirth: date(1973, 6, 6)},
		{FirstName: "Ben", FamilyName: "Bova", DateOfBirth: date(1932, 11, 8)},
		{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: date(1920, 1, 2), DateOfDeath: date(1992, 4, 6)},
		{FirstName: "Bob", FamilyName: "Billings"},
		{FirstName: "Jim", FamilyName: "Jones", DateOfBirth: date(1971, 12, 16)},
	}

	seedGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}

	seedBooks = []seedBook{
		{"The Name of the Wind (The Kingkiller Chronicle, #1)", 0,
			"I have stolen princesses back from sleeping barrow kings.", "9781473211896", []int{0}},
		{"The Wise Man's Fear (The Kingkiller Chronicle, #2)", 0,
			"Picking up the tale of Kvothe Kingkiller once again.", "9788401352836", []int{0}},
		{"The Slow Regard of Silent Things (Kingkiller Chronicle)", 0,
			"Deep below the University, there is a dark place.", "9780756411336", []int{0}},
		{"Apes and Angels", 1,
			"Humankind headed out to the stars not for conquest, nor exploration.", "9780765379528", []int{1}},
		{"Death Wave", 1,
			"In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission.", "9780765379504", []int{1}},
		{"Test Book 1", 4, "Summary of test book 1", "ISBN111111", []int{0, 1}},
		{"Test Book 2", 4, "Summary of test book 2", "ISBN222222", nil},
	}

	seedCopies = []seedCopy{
		{0, "London Gollancz, 2014.", models.StatusAvailable, 0},
		{1, "Gollancz, 2011.", models.StatusLoaned, 14 * 24 * time.Hour},
		{2, "Gollancz, 2015.", models.StatusAvailable, 0},
		{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable, 0},
		{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable, 0},
		{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable, 0},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusAvailable, 0},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusMaintenance, 0},
		{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusLoaned, 7 * 24 * time.Hour},
		{0, "Imprint XXX2", models.StatusReserved, 0},
		{1, "Imprint XXX3", models.StatusMaintenance, 0},
	}
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// seedCatalog fills an empty catalog with sample data. A catalog that already
// holds authors is left untouched.
func seedCatalog(ctx context.Context, st *store.Store, now time.Time, log *slog.Logger) error {
	existing, err := st.Authors.Count(ctx, nil)
	if err != nil {
		return err
	}
	if existing > 0 {
		log.Info("catalog already populated, skipping seed", "authors", existing)
		return nil
	}

	authorIDs := make([]string, len(seedAuthors))
	for i, a := range seedAuthors {
		id, err := st.Authors.Insert(ctx, &a)
		if err != nil {
			return fmt.Errorf("seed author %s: %w", a.Name(), err)
		}
		authorIDs[i] = id
	}

	genres := make([]models.Genre, len(seedGenres))
	for i, name := range seedGenres {
		g := models.Genre{Name: name}
		if _, err := st.Genres.Insert(ctx, &g); err != nil {
			return fmt.Errorf("seed genre %s: %w", name, err)
		}
		genres[i] = g
	}

	bookIDs := make([]string, len(seedBooks))
	for i, sb := range seedBooks {
		b := models.Book{
			Title:    sb.title,
			AuthorID: authorIDs[sb.author],
			Summary:  sb.summary,
			ISBN:     sb.isbn,
		}
		for _, gi := range sb.genres {
			b.Genres = append(b.Genres, genres[gi])
		}
		id, err := st.Books.Insert(ctx, &b)
		if err != nil {
			return fmt.Errorf("seed book %q: %w", sb.title, err)
		}
		bookIDs[i] = id
	}

	for _, sc := range seedCopies {
		bi := models.BookInstance{
			BookID:  bookIDs[sc.book],
			Imprint: sc.imprint,
			Status:  sc.status,
		}
		if sc.dueIn > 0 {
			bi.DueBack = now.Add(sc.dueIn)
		}
		if _, err := st.Instances.Insert(ctx, &bi); err != nil {
			return fmt.Errorf("seed copy of %q: %w", seedBooks[sc.book].title, err)
		}
	}

	log.Info("catalog seeded",
		"authors", len(seedAuthors),
		"genres", len(seedGenres),
		"books", len(seedBooks),
		"copies", len(seedCopies))
	return nil
}
