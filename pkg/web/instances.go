package web

import (
	"locallibrary/pkg/catalog"
	"locallibrary/pkg/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) instanceList(c *gin.Context) (Response, error) {
	copies, err := h.svc.Instances(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return Render("bookinstance_list", gin.H{
		"title":             "Book Instance List",
		"bookinstance_list": mapViews(copies, withNow(h.svc.Now(), instanceView)),
	}), nil
}

func (h *Handler) instanceDetail(c *gin.Context) (Response, error) {
	bi, err := h.svc.Instance(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Book copy not found")
	}
	title := "Copy: "
	if bi.Book != nil {
		title += bi.Book.Title
	}
	return Render("bookinstance_detail", gin.H{
		"title":        title,
		"bookinstance": instanceView(bi, h.svc.Now()),
	}), nil
}

func (h *Handler) instanceCreateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.NewInstanceForm(c.Request.Context())
	if err != nil {
		return Response{}, err
	}
	return h.instanceForm("Create New BookInstance", f), nil
}

func (h *Handler) instanceCreatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.CreateInstance(c.Request.Context(), raw)
	if err != nil {
		return Response{}, err
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return h.instanceForm("Create New BookInstance", f), nil
}

func (h *Handler) instanceUpdateGet(c *gin.Context) (Response, error) {
	f, err := h.svc.EditInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		return Response{}, notFound(err, "Book copy not found")
	}
	return h.instanceForm("Update BookInstance", f), nil
}

func (h *Handler) instanceUpdatePost(c *gin.Context) (Response, error) {
	raw, err := rawForm(c)
	if err != nil {
		return Response{}, err
	}
	f, err := h.svc.UpdateInstance(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		return Response{}, notFound(err, "Book copy not found")
	}
	if f.Saved() {
		return Redirect(f.Location), nil
	}
	return h.instanceForm("Update BookInstance", f), nil
}

func (h *Handler) instanceDeleteGet(c *gin.Context) (Response, error) {
	return h.instanceDelete(c, false)
}

func (h *Handler) instanceDeletePost(c *gin.Context) (Response, error) {
	return h.instanceDelete(c, true)
}

func (h *Handler) instanceDelete(c *gin.Context, confirm bool) (Response, error) {
	d, err := h.svc.DeleteInstance(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		return Response{}, err
	}
	if d.State == catalog.DeleteDone {
		return Redirect(d.Location), nil
	}
	return Render("bookinstance_delete", gin.H{
		"title":        "Delete BookInstance",
		"bookinstance": instanceView(*d.Entity, h.svc.Now()),
	}), nil
}

func (h *Handler) instanceForm(title string, f catalog.InstanceForm) Response {
	return Render("bookinstance_form", gin.H{
		"title":         title,
		"bookinstance":  f.Input,
		"selected_book": f.Input.Book,
		"book_list":     mapViews(f.Books, withNow(h.svc.Now(), bookView)),
		"statuses":      models.Statuses,
		"errors":        violations(f.Violations),
	})
}
