// Package forms validates and sanitizes submitted catalog forms.
//
// Every rule for every field is evaluated, so a failed submission reports
// all of its violations at once. Values are trimmed, HTML escaped and, for
// date fields, coerced whether or not validation passed, so the sanitized
// input can always be echoed back into a re-rendered form.
package forms

import (
	"fmt"
	"strings"
	"time"

	"locallibrary/pkg/models"

	"github.com/go-playground/validator/v10"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
	Value   string `json:"value,omitempty"`
}

// Raw is a submitted form. Values are strings, string slices (repeated form
// keys) or []any (JSON arrays).
type Raw map[string]any

// String returns the first value submitted for key, or "".
func (r Raw) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	case []any:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprint(v[0])
	default:
		return fmt.Sprint(v)
	}
}

// List normalizes a multi-valued field: missing becomes empty, a scalar
// becomes one element and a list is kept as is.
func (r Raw) List(key string) []string {
	switch v := r[key].(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		s := r.String(key)
		if s == "" {
			return []string{}
		}
		return []string{s}
	}
}

// Rule checks one field with a validator tag.
type Rule struct {
	Field   string
	Tag     string
	Message string
	// Optional rules are skipped when the trimmed value is empty.
	Optional bool
	// Stored rules check the escaped value, which is what gets persisted.
	Stored bool
}

// Pipeline evaluates rules with go-playground/validator.
type Pipeline struct {
	validate *validator.Validate
}

// isoLayouts are the ISO 8601 forms accepted for dates, including reduced
// precision and the basic calendar format.
var isoLayouts = []string{
	"2006",
	"2006-01",
	"2006-01-02",
	"20060102",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

func NewPipeline() *Pipeline {
	v := validator.New()
	if err := v.RegisterValidation("iso8601", validateISO8601); err != nil {
		panic(err)
	}
	return &Pipeline{validate: v}
}

func validateISO8601(fl validator.FieldLevel) bool {
	_, ok := parseDate(fl.Field().String())
	return ok
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Check runs rules against the trimmed values and returns every violation.
func (p *Pipeline) Check(values map[string]string, rules []Rule) []Violation {
	var violations []Violation
	for _, rule := range rules {
		value := strings.TrimSpace(values[rule.Field])
		if rule.Optional && value == "" {
			continue
		}
		checked := value
		if rule.Stored {
			checked = Escape(value)
		}
		if err := p.validate.Var(checked, rule.Tag); err != nil {
			violations = append(violations, Violation{
				Field:   rule.Field,
				Message: rule.Message,
				Value:   Escape(value),
			})
		}
	}
	return violations
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces HTML-significant characters with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Clean trims and escapes a submitted value.
func Clean(s string) string {
	return Escape(strings.TrimSpace(s))
}

// cleanDate trims a date value and coerces it. The echo is the canonical
// form date when it parses and the escaped input otherwise.
func cleanDate(s string) (*time.Time, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}
	t, ok := parseDate(s)
	if !ok {
		return nil, Escape(s)
	}
	return &t, models.FormatForm(t)
}
