package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtg9ny/recipe-backend/internal/domain"
)

func paths(err error) []string {
	var verr *Error
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		out = append(out, v.Path)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	out, err := Validate(domain.Fields{
		Title:        "  Soup ",
		Description:  "A warm broth recipe",
		Instructions: "Boil water and add vegetables",
		Ingredients:  domain.Ingredients{"water", "carrot"},
	}, CreateRules)
	require.NoError(t, err)

	assert.Equal(t, "Soup", out.Title)
	assert.Equal(t, "A warm broth recipe", out.Description)
	assert.Equal(t, "Boil water and add vegetables", out.Instructions)
	assert.Equal(t, domain.Ingredients{"water", "carrot"}, out.Ingredients)
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	_, err := Validate(domain.Fields{
		Title:        "   ",
		Description:  "short",
		Instructions: "ok",
		Ingredients:  domain.Ingredients{},
	}, CreateRules)
	require.Error(t, err)
	assert.Equal(t, []string{"title", "description", "instructions"}, paths(err))

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title must not be empty", verr.Violations[0].Msg)
	assert.Equal(t, "field", verr.Violations[0].Type)
	assert.Equal(t, "body", verr.Violations[0].Location)
	assert.Equal(t, "short", verr.Violations[1].Value)
}

func TestValidate_LengthBoundaries(t *testing.T) {
	base := domain.Fields{
		Title:        "T",
		Description:  strings.Repeat("d", 10),
		Instructions: strings.Repeat("i", 10),
	}
	_, err := Validate(base, CreateRules)
	assert.NoError(t, err)

	short := base
	short.Description = "  " + strings.Repeat("d", 9) + "  "
	_, err = Validate(short, CreateRules)
	assert.Equal(t, []string{"description"}, paths(err))

	long := base
	long.Title = strings.Repeat("é", domain.MaxTitleLength)
	_, err = Validate(long, CreateRules)
	assert.NoError(t, err)

	long.Title = strings.Repeat("x", domain.MaxTitleLength+1)
	_, err = Validate(long, CreateRules)
	assert.Equal(t, []string{"title"}, paths(err))
}

func TestValidate_UpdateRulesMatchCreate(t *testing.T) {
	_, err := Validate(domain.Fields{Title: "Soup", Description: "tiny", Instructions: "tiny too"}, UpdateRules)
	assert.Equal(t, []string{"description", "instructions"}, paths(err))
}

func TestValidate_Escapes(t *testing.T) {
	out, err := Validate(domain.Fields{
		Title:        `<b>Mac & "Cheese"</b>`,
		Description:  "Tom's 1/2 portion",
		Instructions: "Use a <script> tag `never`",
		Ingredients:  domain.Ingredients{"salt & pepper", `back\slash`},
	}, CreateRules)
	require.NoError(t, err)

	assert.Equal(t, "&lt;b&gt;Mac &amp; &quot;Cheese&quot;&lt;&#x2F;b&gt;", out.Title)
	assert.Equal(t, "Tom&#x27;s 1&#x2F;2 portion", out.Description)
	assert.Equal(t, "Use a &lt;script&gt; tag &#96;never&#96;", out.Instructions)
	assert.Equal(t, domain.Ingredients{"salt &amp; pepper", "back&#x5C;slash"}, out.Ingredients)
}

func TestValidate_EmptyIngredient(t *testing.T) {
	_, err := Validate(domain.Fields{
		Title:        "Soup",
		Description:  "A warm broth recipe",
		Instructions: "Boil water and add vegetables",
		Ingredients:  domain.Ingredients{"water", " "},
	}, CreateRules)
	assert.Equal(t, []string{"ingredients[1]"}, paths(err))
}

func TestValidate_NilIngredientsBecomeEmpty(t *testing.T) {
	out, err := Validate(domain.Fields{
		Title:        "Soup",
		Description:  "A warm broth recipe",
		Instructions: "Boil water and add vegetables",
	}, CreateRules)
	require.NoError(t, err)
	assert.NotNil(t, out.Ingredients)
	assert.Empty(t, out.Ingredients)
}

func TestError_Fields(t *testing.T) {
	err := &Error{Violations: []Violation{
		{Path: "title", Msg: "first"},
		{Path: "title", Msg: "second"},
	}}
	assert.Equal(t, map[string]string{"title": "first"}, err.Fields())
	assert.Contains(t, err.Error(), "title: first")
}
