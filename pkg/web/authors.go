package web

import (
	"locallibrary/pkg/catalog"
	"locallibrary/pkg/forms"

	"github.com/gin-gonic/gin"
)

func (h *Handler) index(c *gin.Context) (Response, error) {
	counts, err := h.svc.Index(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return Render("index", gin.H{"title": "Local Library Home", "data": counts}), nil
}

func (h *Handler) authorList(c *gin.Context) (Response, error) {
	authors, err := h.svc.Authors(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return Render("author_list", gin.H{
		"title":       "Author List",
		"author_list": mapViews(authors, withNow(h.svc.Now(), authorView)),
	}), nil
}

func (h *Handler) authorDetail(c *gin.Context) (Response, error) {
	detail, err := h.svc.Author(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Author not found")
	}
	now := h.svc.Now()
	return Render("author_detail", gin.H{
		"title":        "Author Detail",
		"author":       authorView(detail.Author, now),
		"author_books": mapViews(detail.Books, withNow(now, bookView)),
	}), nil
}

func (h *Handler) authorCreateGet(*gin.Context) (Response, error) {
	return authorForm("Create New Author", catalog.Form[forms.AuthorInput]{}), nil
}

func (h *Handler) authorCreatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.CreateAuthor(c.Request.Context(), raw)
	if err != nil {
		return Response{}, err
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return authorForm("Create New Author", f), nil
}

func (h *Handler) authorUpdateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.EditAuthor(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Author not found")
	}
	return authorForm("Update Author", f), nil
}

func (h *Handler) authorUpdatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.UpdateAuthor(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		return Response{}, notFound(err, "Author not found")
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return authorForm("Update Author", f), nil
}

func (h *Handler) authorDeleteGet(c *gin.Context) (Response, error) {
	return h.authorDelete(c, false)
}

func (h *Handler) authorDeletePost(c *gin.Context) (Response, error) {
	return h.authorDelete(c, true)
}

func (h *Handler) authorDelete(c *gin.Context, confirm bool) (Response, error) {
	d, err := h.svc.DeleteAuthor(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		return Response{}, err
	}
	if d.State == catalog.DeleteDone {
		return Redirect(d.Location), nil
	}
	now := h.svc.Now()
	return Render("author_delete", gin.H{
		"title":        "Delete Author",
		"author":       authorView(*d.Entity, now),
		"author_books": mapViews(d.Dependents, withNow(now, bookView)),
		"blocked":      d.State == catalog.DeleteBlocked,
	}), nil
}

func authorForm(title string, f catalog.Form[forms.AuthorInput]) Response {
	return Render("author_form", gin.H{
		"title":  title,
		"author": f.Input,
		"errors": violations(f.Violations),
	})
}

func violations(v []forms.Violation) []forms.Violation {
	if v == nil {
		return []forms.Violation{}
	}
	return v
}
