package web

import (
	"locallibrary/pkg/catalog"
	"locallibrary/pkg/forms"

	"github.com/gin-gonic/gin"
)

func (h *Handler) genreList(c *gin.Context) (Response, error) {
	genres, err := h.svc.Genres(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return Render("genre_list", gin.H{
		"title":      "Genre List",
		"genre_list": mapViews(genres, genreView),
	}), nil
}

func (h *Handler) genreDetail(c *gin.Context) (Response, error) {
	detail, err := h.svc.Genre(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Genre not found")
	}
	return Render("genre_detail", gin.H{
		"title":       "Genre Detail",
		"genre":       genreView(detail.Genre),
		"genre_books": mapViews(detail.Books, withNow(h.svc.Now(), bookView)),
	}), nil
}

func (h *Handler) genreCreateGet(*gin.Context) (Response, error) {
	return genreForm("Create New Genre", catalog.Form[forms.GenreInput]{}), nil
}

func (h *Handler) genreCreatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.CreateGenre(c.Request.Context(), raw)
	if err != nil {
		return Response{}, err
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return genreForm("Create New Genre", f), nil
}

func (h *Handler) genreUpdateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.EditGenre(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Genre not found")
	}
	return genreForm("Update Genre", f), nil
}

func (h *Handler) genreUpdatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.UpdateGenre(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		return Response{}, notFound(err, "Genre not found")
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return genreForm("Update Genre", f), nil
}

func (h *Handler) genreDeleteGet(c *gin.Context) (Response, error) {
	return h.genreDelete(c, false)
}

func (h *Handler) genreDeletePost(c *gin.Context) (Response, error) {
	return h.genreDelete(c, true)
}

func (h *Handler) genreDelete(c *gin.Context, confirm bool) (Response, error) {
	d, err := h.svc.DeleteGenre(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		return Response{}, err
	}
	if d.State == catalog.DeleteDone {
		return Redirect(d.Location), nil
	}
	return Render("genre_delete", gin.H{
		"title":   "Delete Genre",
		"genre":   genreView(*d.Entity),
		"books":   mapViews(d.Dependents, withNow(h.svc.Now(), bookView)),
		"blocked": d.State == catalog.DeleteBlocked,
	}), nil
}

func genreForm(title string, f catalog.Form[forms.GenreInput]) Response {
	return Render("genre_form", gin.H{
		"title":  title,
		"genre":  f.Input,
		"errors": violations(f.Violations),
	})
}
