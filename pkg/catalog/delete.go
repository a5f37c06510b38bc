package catalog

import (
	"context"
	"errors"

	"locallibrary/pkg/aggregate"
)

// DeleteState is the progress of a guarded delete.
type DeleteState int

const (
	// DeleteFetching means the entity and its dependents were loaded and
	// nothing was removed. Confirmation pages stop here.
	DeleteFetching DeleteState = iota
	// DeleteBlocked means dependents still reference the entity.
	DeleteBlocked
	DeleteConfirmed
	DeleteDone
	DeleteFailed
)

func (s DeleteState) String() string {
	switch s {
	case DeleteFetching:
		return "fetching"
	case DeleteBlocked:
		return "blocked"
	case DeleteConfirmed:
		return "confirmed"
	case DeleteDone:
		return "done"
	case DeleteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Deletion is the result of a guarded delete of an E referenced by Ds.
type Deletion[E, D any] struct {
	State      DeleteState
	Entity     *E
	Dependents []D
	// Missing is set when the entity did not exist.
	Missing bool
	// Location is the listing to return to once State is DeleteDone.
	Location string
}

type guardedDelete[E, D any] struct {
	view       string
	listing    string
	find       func(ctx context.Context) (*E, error)
	dependents func(ctx context.Context) ([]D, error)
	remove     func(ctx context.Context) error
}

// run fetches the entity and its dependents together and removes the
// entity only when confirm is set and nothing depends on it.
func (g guardedDelete[E, D]) run(ctx context.Context, s *Service, confirm bool) (Deletion[E, D], error) {
	d := Deletion[E, D]{State: DeleteFetching, Dependents: []D{}}

	lookups := []aggregate.Lookup{aggregate.One("entity", &d.Entity, g.find)}
	if g.dependents != nil {
		lookups = append(lookups, aggregate.Many("dependents", &d.Dependents, g.dependents))
	}
	err := s.fetch.Fetch(ctx, g.view, lookups[0], lookups[1:]...)
	switch {
	case errors.Is(err, aggregate.ErrPrimaryNotFound):
		d.State, d.Missing, d.Location = DeleteDone, true, g.listing
		return d, nil
	case err != nil:
		d.State = DeleteFailed
		return d, err
	}

	if len(d.Dependents) > 0 {
		d.State = DeleteBlocked
		return d, nil
	}
	if !confirm {
		return d, nil
	}

	d.State = DeleteConfirmed
	if err := g.remove(ctx); err != nil {
		d.State = DeleteFailed
		return d, err
	}
	d.State, d.Location = DeleteDone, g.listing
	return d, nil
}
