package views

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/validation"
)

func newTestRenderer(t *testing.T) *Renderer {
	r, err := New()
	require.NoError(t, err)
	return r
}

func render(t *testing.T, name string, page *Page) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	newTestRenderer(t).Render(rec, http.StatusOK, name, page)
	return rec
}

var soup = &domain.Record{
	ID:           "abc123",
	Title:        "Mac &amp; Cheese",
	Description:  "Tom&#x27;s favourite dish",
	Instructions: "Boil **pasta** then &lt;stir&gt;",
	Ingredients:  domain.Ingredients{"pasta", "cheese"},
}

func TestRender_Detail(t *testing.T) {
	rec := render(t, PageDetail, &Page{Title: "Recipe Details", Kind: domain.RecipeKind, Record: soup})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Mac &amp; Cheese")
	assert.NotContains(t, body, "&amp;amp;")
	assert.Contains(t, body, "<strong>pasta</strong>")
	assert.Contains(t, body, "&lt;stir&gt;")
	assert.Contains(t, body, `href="/catalog/recipe/abc123/update"`)
	assert.Contains(t, body, "<li>cheese</li>")
}

func TestRender_List(t *testing.T) {
	body := render(t, PageList, &Page{Title: "Recipe List", Kind: domain.RecipeKind, Records: []*domain.Record{soup}}).Body.String()
	assert.Contains(t, body, `href="/catalog/recipe/abc123"`)

	empty := render(t, PageList, &Page{Title: "Post List", Kind: domain.PostKind}).Body.String()
	assert.Contains(t, empty, "There are no posts.")
}

func TestRender_FormWithErrors(t *testing.T) {
	body := render(t, PageForm, &Page{
		Title:  "Create Recipe",
		Kind:   domain.RecipeKind,
		Action: "/catalog/recipe/create",
		Record: soup,
		Errors: []validation.Violation{{Path: "title", Msg: "Title must not be empty"}},
	}).Body.String()

	assert.Contains(t, body, `action="/catalog/recipe/create"`)
	assert.Contains(t, body, `value="Mac &amp; Cheese"`)
	assert.Contains(t, body, "Title must not be empty")
}

func TestRender_EmptyForm(t *testing.T) {
	body := render(t, PageForm, &Page{Title: "Create Recipe", Kind: domain.RecipeKind, Action: "/catalog/recipe/create"}).Body.String()
	assert.Contains(t, body, `value=""`)
	assert.NotContains(t, body, `class="errors"`)
}

func TestRender_IndexDeleteError(t *testing.T) {
	index := render(t, PageIndex, &Page{Title: "Recipe Home", Counts: []Count{{Kind: domain.RecipeKind, Count: 3}}}).Body.String()
	assert.Contains(t, index, "Recipes:</strong> 3")

	del := render(t, PageDelete, &Page{Title: "Delete Recipe", Kind: domain.RecipeKind, Record: soup, Action: "/catalog/recipe/abc123/delete"}).Body.String()
	assert.Contains(t, del, `action="/catalog/recipe/abc123/delete"`)

	rec := httptest.NewRecorder()
	newTestRenderer(t).Render(rec, http.StatusNotFound, PageError, &Page{Title: "Error", Status: 404, Message: "Recipe not found"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recipe not found")
}

func TestRender_UnknownPage(t *testing.T) {
	rec := render(t, "nope", &Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatic(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".sidebar")
}
