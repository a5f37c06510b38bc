package web

import (
	"errors"
	"strings"

	"locallibrary/pkg/apperrors"
	"locallibrary/pkg/forms"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// rawForm reads a JSON object or an urlencoded body. Repeated form keys
// become string slices; single keys stay scalar.
func rawForm(c *gin.Context) (forms.Raw, error) {
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		raw := forms.Raw{}
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidation, "malformed JSON body")
		}
		return raw, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "malformed form body")
	}
	raw := make(forms.Raw, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		switch len(values) {
		case 0:
		case 1:
			raw[key] = values[0]
		default:
			raw[key] = values
		}
	}
	return raw, nil
}

// notFound replaces the message of a not-found error with one naming the
// missing entity.
func notFound(err error, message string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, message)
	}
	return err
}
