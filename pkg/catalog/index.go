package catalog

import (
	"context"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/models"
	"locallibrary/pkg/store"
)

// Counts summarizes the catalog for the home page.
type Counts struct {
	Books              int64 `json:"book_count"`
	Instances          int64 `json:"book_instance_count"`
	AvailableInstances int64 `json:"book_instance_available_count"`
	Authors            int64 `json:"author_count"`
	Genres             int64 `json:"genre_count"`
}

func (s *Service) Index(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.fetch.Gather(ctx, "index",
		aggregate.Count("books", &c.Books, func(ctx context.Context) (int64, error) {
			return s.store.Books.Count(ctx, nil)
		}),
		aggregate.Count("instances", &c.Instances, func(ctx context.Context) (int64, error) {
			return s.store.Instances.Count(ctx, nil)
		}),
		aggregate.Count("available", &c.AvailableInstances, func(ctx context.Context) (int64, error) {
			return s.store.Instances.Count(ctx, store.Filter{"status": string(models.StatusAvailable)})
		}),
		aggregate.Count("authors", &c.Authors, func(ctx context.Context) (int64, error) {
			return s.store.Authors.Count(ctx, nil)
		}),
		aggregate.Count("genres", &c.Genres, func(ctx context.Context) (int64, error) {
			return s.store.Genres.Count(ctx, nil)
		}),
	)
	if err != nil {
		return Counts{}, err
	}
	return c, nil
}
