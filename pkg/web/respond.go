package web

import (
	"errors"
	"net/http"

	"locallibrary/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// Response is what a request resolved to: a view rendered with data, or a
// redirect to Location.
type Response struct {
	View     string
	Data     gin.H
	Location string
}

func Render(view string, data gin.H) Response {
	return Response{View: view, Data: data}
}

func Redirect(location string) Response {
	return Response{Location: location}
}

func (r Response) IsRedirect() bool { return r.Location != "" }

type handlerFunc func(c *gin.Context) (Response, error)

// handle adapts a handler to gin and dispatches its outcome.
func (h *Handler) handle(fn handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := fn(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.respond(c, resp)
	}
}

func (h *Handler) respond(c *gin.Context, resp Response) {
	if resp.IsRedirect() {
		c.Redirect(http.StatusFound, resp.Location)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": resp.View, "data": resp.Data})
}

// fail renders the error view with the status carried by err. Causes of
// server errors are logged, not shown.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)
	code := apperrors.CodeInternal
	message := http.StatusText(status)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		code = appErr.Code
		if status < http.StatusInternalServerError {
			message = appErr.Message
		}
	}
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"request_id", requestID(c), "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)

	c.JSON(status, gin.H{
		"view": "error",
		"data": gin.H{
			"message": message,
			"error":   gin.H{"status": status, "code": code},
		},
	})
}
