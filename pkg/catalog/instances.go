package catalog

import (
	"context"

	"locallibrary/pkg/aggregate"
	"locallibrary/pkg/forms"
	"locallibrary/pkg/models"
)

func (s *Service) Instances(ctx context.Context) ([]models.BookInstance, error) {
	return s.store.Instances.FindMany(ctx, nil, "")
}

func (s *Service) Instance(ctx context.Context, id string) (models.BookInstance, error) {
	var bi *models.BookInstance
	if err := s.fetch.Fetch(ctx, "bookinstance_detail", aggregate.One("bookinstance", &bi, s.findInstance(id))); err != nil {
		return models.BookInstance{}, err
	}
	return *bi, nil
}

func (s *Service) NewInstanceForm(ctx context.Context) (InstanceForm, error) {
	f := InstanceForm{}
	if err := s.bookList(ctx, &f); err != nil {
		return InstanceForm{}, err
	}
	return f, nil
}

func (s *Service) EditInstance(ctx context.Context, id string) (InstanceForm, error) {
	var (
		f  InstanceForm
		bi *models.BookInstance
	)
	if err := s.bookList(ctx, &f, aggregate.One("bookinstance", &bi, s.findInstance(id))); err != nil {
		return InstanceForm{}, err
	}
	f.Input = forms.FromInstance(*bi)
	return f, nil
}

// CreateInstance stores a new copy. The book reference is not checked
// against the store.
func (s *Service) CreateInstance(ctx context.Context, raw forms.Raw) (InstanceForm, error) {
	in, violations := s.forms.Instance(raw, s.now())
	f := InstanceForm{Form: Form[forms.InstanceInput]{Input: in, Violations: violations}}
	if len(violations) > 0 {
		if err := s.bookList(ctx, &f); err != nil {
			return f, err
		}
		return f, nil
	}

	bi := in.Model()
	if _, err := s.store.Instances.Insert(ctx, &bi); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "book instance created", "id", bi.ID, "book", bi.BookID)
	f.Location = bi.URL()
	return f, nil
}

func (s *Service) UpdateInstance(ctx context.Context, id string, raw forms.Raw) (InstanceForm, error) {
	in, violations := s.forms.Instance(raw, s.now())
	f := InstanceForm{Form: Form[forms.InstanceInput]{Input: in, Violations: violations}}
	if len(violations) > 0 {
		var current *models.BookInstance
		err := s.bookList(ctx, &f, aggregate.One("bookinstance", &current, s.findInstance(id)))
		return f, err
	}

	bi := in.Model()
	if _, err := s.store.Instances.UpdateByID(ctx, id, &bi); err != nil {
		return f, err
	}
	s.log.InfoContext(ctx, "book instance updated", "id", id)
	f.Location = models.BookInstance{ID: id}.URL()
	return f, nil
}

// DeleteInstance removes a copy. Nothing references copies, so it is never
// blocked.
func (s *Service) DeleteInstance(ctx context.Context, id string, confirm bool) (Deletion[models.BookInstance, struct{}], error) {
	d, err := guardedDelete[models.BookInstance, struct{}]{
		view:    "bookinstance_delete",
		listing: models.InstancesURL,
		find:    s.findInstance(id),
		remove:  func(ctx context.Context) error { return s.store.Instances.DeleteByID(ctx, id) },
	}.run(ctx, s, confirm)
	if err == nil && d.State == DeleteDone && !d.Missing {
		s.log.InfoContext(ctx, "book instance deleted", "id", id)
	}
	return d, err
}

func (s *Service) bookList(ctx context.Context, f *InstanceForm, primary ...aggregate.Lookup) error {
	var books []models.Book
	list := aggregate.Many("books", &books, func(ctx context.Context) ([]models.Book, error) {
		return s.store.Books.FindMany(ctx, nil, "title")
	})

	var err error
	if len(primary) > 0 {
		err = s.fetch.Fetch(ctx, "bookinstance_form", primary[0], list)
	} else {
		err = s.fetch.Gather(ctx, "bookinstance_form", list)
	}
	if err != nil {
		return err
	}
	f.Books = books
	return nil
}

func (s *Service) findInstance(id string) func(context.Context) (*models.BookInstance, error) {
	return func(ctx context.Context) (*models.BookInstance, error) {
		return s.store.Instances.FindByID(ctx, id)
	}
}
