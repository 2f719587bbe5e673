// Package validation trims, length-checks and escapes incoming record fields.
//
// Every rule runs; violations are collected in field order rather than
// returned on the first failure.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mtg9ny/recipe-backend/internal/domain"
)

// Violation is one failed constraint. The JSON shape is what API clients
// already consume in the errors array.
type Violation struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Rules holds the minimum lengths that differ between write paths.
type Rules struct {
	DescriptionMin  int
	InstructionsMin int
}

var (
	// CreateRules apply to new records.
	CreateRules = Rules{DescriptionMin: 10, InstructionsMin: 10}
	// UpdateRules apply to full-replace updates. They match CreateRules so a
	// record that could not be created cannot be produced by an update.
	UpdateRules = CreateRules
)

// Error reports a rejected write. Violations are never empty.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Path+": "+v.Msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Fields returns the set of paths that failed, for quick lookup in views.
func (e *Error) Fields() map[string]string {
	out := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		if _, ok := out[v.Path]; !ok {
			out[v.Path] = v.Msg
		}
	}
	return out
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

// Escape replaces markup-significant characters with HTML entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

type checker struct {
	violations []Violation
}

func (c *checker) add(path, value, msg string) {
	c.violations = append(c.violations, Violation{
		Type:     "field",
		Value:    value,
		Msg:      msg,
		Path:     path,
		Location: "body",
	})
}

// text trims value, checks its length bounds (max <= 0 means unbounded) and
// returns the escaped result.
func (c *checker) text(path, value string, min, max int, tooShort, tooLong string) string {
	trimmed := strings.TrimSpace(value)
	n := utf8.RuneCountInString(trimmed)
	if n < min {
		c.add(path, trimmed, tooShort)
	}
	if max > 0 && n > max {
		c.add(path, trimmed, tooLong)
	}
	return Escape(trimmed)
}

// Validate sanitizes in and checks it against rules. The returned fields are
// always sanitized; the write may proceed only if the returned error is nil.
func Validate(in domain.Fields, rules Rules) (domain.Fields, error) {
	c := &checker{}
	out := domain.Fields{
		Title: c.text("title", in.Title, 1, domain.MaxTitleLength,
			"Title must not be empty",
			fmt.Sprintf("Title must not exceed %d characters", domain.MaxTitleLength)),
		Description: c.text("description", in.Description, rules.DescriptionMin, 0,
			"Description must be longer", ""),
		Instructions: c.text("instructions", in.Instructions, rules.InstructionsMin, 0,
			"Instructions must be longer", ""),
		Ingredients: make(domain.Ingredients, 0, len(in.Ingredients)),
	}

	for i, ingredient := range in.Ingredients {
		if strings.TrimSpace(ingredient) == "" {
			c.add(fmt.Sprintf("ingredients[%d]", i), ingredient, "Ingredient must not be empty")
		}
		out.Ingredients = append(out.Ingredients, Escape(ingredient))
	}

	if len(c.violations) > 0 {
		return out, &Error{Violations: c.violations}
	}
	return out, nil
}
