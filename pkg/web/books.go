package web

import (
	"locallibrary/pkg/catalog"

	"github.com/gin-gonic/gin"
)

func (h *Handler) bookList(c *gin.Context) (Response, error) {
	books, err := h.svc.Books(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return Render("book_list", gin.H{
		"title":     "Book List",
		"book_list": mapViews(books, withNow(h.svc.Now(), bookView)),
	}), nil
}

func (h *Handler) bookDetail(c *gin.Context) (Response, error) {
	detail, err := h.svc.Book(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Book not found")
	}
	now := h.svc.Now()
	return Render("book_detail", gin.H{
		"title":          detail.Book.Title,
		"book":           bookView(detail.Book, now),
		"book_instances": mapViews(detail.Instances, withNow(now, instanceView)),
	}), nil
}

func (h *Handler) bookCreateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.NewBookForm(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return h.bookForm("Create New Book", f), nil
}

func (h *Handler) bookCreatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.CreateBook(c.Request.Context(), raw)
	if err != nil {
		return Response{}, err
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return h.bookForm("Create New Book", f), nil
}

func (h *Handler) bookUpdateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.EditBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Book not found")
	}
	return h.bookForm("Update Book", f), nil
}

func (h *Handler) bookUpdatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.UpdateBook(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		return Response{}, notFound(err, "Book not found")
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return h.bookForm("Update Book", f), nil
}

func (h *Handler) bookDeleteGet(c *gin.Context) (Response, error) {
	return h.bookDelete(c, false)
}

func (h *Handler) bookDeletePost(c *gin.Context) (Response, error) {
	return h.bookDelete(c, true)
}

func (h *Handler) bookDelete(c *gin.Context, confirm bool) (Response, error) {
	d, err := h.svc.DeleteBook(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		return Response{}, err
	}
	if d.State == catalog.DeleteDone {
		return Redirect(d.Location), nil
	}
	now := h.svc.Now()
	return Render("book_delete", gin.H{
		"title":         "Delete Book",
		"book":          bookView(*d.Entity, now),
		"bookinstances": mapViews(d.Dependents, withNow(now, instanceView)),
		"blocked":       d.State == catalog.DeleteBlocked,
	}), nil
}

func (h *Handler) bookForm(title string, f catalog.BookForm) Response {
	return Render("book_form", gin.H{
		"title":   title,
		"book":    f.Input,
		"authors": mapViews(f.Authors, withNow(h.svc.Now(), authorView)),
		"genres":  mapViews(f.Genres, genreOptionView),
		"errors":  violations(f.Violations),
	})
}
