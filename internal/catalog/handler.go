// Package catalog serves the CRUD pages and JSON API of one record kind.
//
// Recipes and legacy posts share one Handler type; only the domain.Kind and
// the store differ.
package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtg9ny/recipe-backend/internal/dataloader"
	"github.com/mtg9ny/recipe-backend/internal/domain"
	apperrors "github.com/mtg9ny/recipe-backend/internal/errors"
	"github.com/mtg9ny/recipe-backend/internal/storage"
	"github.com/mtg9ny/recipe-backend/internal/validation"
	"github.com/mtg9ny/recipe-backend/internal/views"
)

// Handler implements the operations of one resource kind.
type Handler struct {
	kind  domain.Kind
	store storage.Storage
	views *views.Renderer
}

// New creates a Handler serving kind from store.
func New(kind domain.Kind, store storage.Storage, renderer *views.Renderer) *Handler {
	return &Handler{
		kind:  kind,
		store: store,
		views: renderer,
	}
}

// Kind returns the resource kind served by h.
func (h *Handler) Kind() domain.Kind {
	return h.kind
}

func (h *Handler) notFoundMessage() string {
	return h.kind.Title + " not found"
}

func (h *Handler) formAction(id string) string {
	if id == "" {
		return domain.CatalogPrefix + "/" + h.kind.Singular + "/create"
	}
	return h.kind.RecordPath(&domain.Record{ID: id}) + "/update"
}

// fail reports a store error in the representation the client asked for.
// Not-found errors become 404; anything else is a generic 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	if apperrors.IsNotFound(err) {
		status, msg = http.StatusNotFound, h.notFoundMessage()
	} else {
		logStoreError(r, op, err)
	}

	if wantsJSON(r) {
		respondError(w, status, msg)
		return
	}
	h.views.Render(w, status, views.PageError, &views.Page{
		Title:   "Error",
		Status:  status,
		Message: msg,
	})
}

func (h *Handler) load(r *http.Request) (*domain.Record, error) {
	id := chi.URLParam(r, "id")
	return dataloader.Load(r.Context(), h.kind.Collection, h.store, id)
}

// List handles GET /<plural>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, "list", err)
		return
	}

	if wantsJSON(r) {
		out := make([]recordResponse, 0, len(records))
		for _, rec := range records {
			out = append(out, newRecordResponse(rec))
		}
		respondJSON(w, http.StatusOK, map[string]any{h.kind.Plural: out})
		return
	}
	h.views.Render(w, http.StatusOK, views.PageList, &views.Page{
		Title:   h.kind.Title + " List",
		Kind:    h.kind,
		Records: records,
	})
}

// Detail handles GET /<singular>/{id}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	rec, err := h.load(r)
	if err != nil {
		h.fail(w, r, "detail", err)
		return
	}

	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]any{h.kind.Singular: newRecordResponse(rec)})
		return
	}
	h.views.Render(w, http.StatusOK, views.PageDetail, &views.Page{
		Title:  h.kind.Title + " Details",
		Kind:   h.kind,
		Record: rec,
	})
}

// CreateForm handles GET /<singular>/create.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	title := "Create " + h.kind.Title
	if wantsJSON(r) {
		empty := &domain.Record{Ingredients: domain.Ingredients{}}
		respondJSON(w, http.StatusOK, map[string]any{"title": title, h.kind.Singular: empty})
		return
	}
	h.views.Render(w, http.StatusOK, views.PageForm, &views.Page{
		Title:  title,
		Kind:   h.kind,
		Action: h.formAction(""),
	})
}

// Create handles POST /<singular>/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, "", validation.CreateRules)
}

// UpdateForm handles GET /<singular>/{id}/update.
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	rec, err := h.load(r)
	if err != nil {
		h.fail(w, r, "update form", err)
		return
	}

	title := "Update " + h.kind.Title
	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]any{"title": title, h.kind.Singular: newRecordResponse(rec)})
		return
	}
	h.views.Render(w, http.StatusOK, views.PageForm, &views.Page{
		Title:  title,
		Kind:   h.kind,
		Record: rec,
		Action: h.formAction(rec.ID),
	})
}

// Update handles POST and PUT /<singular>/{id}/update. All four editable
// fields are replaced.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, chi.URLParam(r, "id"), validation.UpdateRules)
}

// write runs the shared create/update flow. An empty id means create.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, id string, rules validation.Rules) {
	creating := id == ""
	title := "Update " + h.kind.Title
	if creating {
		title = "Create " + h.kind.Title
	}

	input, err := decodeFields(w, r)
	if err != nil {
		if wantsJSON(r) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		h.views.Render(w, http.StatusBadRequest, views.PageError, &views.Page{
			Title:   "Error",
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
		return
	}

	fields, err := validation.Validate(input, rules)
	var verr *validation.Error
	if errors.As(err, &verr) {
		if wantsJSON(r) {
			respondViolations(w, verr)
			return
		}
		h.views.Render(w, http.StatusBadRequest, views.PageForm, &views.Page{
			Title: title,
			Kind:  h.kind,
			Record: &domain.Record{
				ID:           id,
				Title:        fields.Title,
				Description:  fields.Description,
				Instructions: fields.Instructions,
				Ingredients:  fields.Ingredients,
			},
			Errors: verr.Violations,
			Action: h.formAction(id),
		})
		return
	}

	var rec *domain.Record
	if creating {
		rec, err = h.store.Create(r.Context(), fields)
	} else {
		rec, err = h.store.Update(r.Context(), id, fields)
		dataloader.Forget(r.Context(), h.kind.Collection, id)
	}
	if err != nil {
		h.fail(w, r, "write", err)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, h.kind.RecordPath(rec), http.StatusSeeOther)
		return
	}
	if creating {
		respondJSON(w, http.StatusCreated, map[string]any{
			"message":        h.kind.Title + " created successfully!",
			h.kind.Singular: newRecordResponse(rec),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":        h.kind.Title + " updated successfully",
		h.kind.Singular: newRecordResponse(rec),
	})
}

// DeleteForm handles GET /<singular>/{id}/delete. A missing record sends
// HTML clients back to the listing.
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	rec, err := h.load(r)
	if err != nil {
		if apperrors.IsNotFound(err) && !wantsJSON(r) {
			http.Redirect(w, r, h.kind.ListPath(), http.StatusFound)
			return
		}
		h.fail(w, r, "delete form", err)
		return
	}

	title := "Delete " + h.kind.Title
	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]any{"title": title, h.kind.Singular: newRecordResponse(rec)})
		return
	}
	h.views.Render(w, http.StatusOK, views.PageDelete, &views.Page{
		Title:  title,
		Kind:   h.kind,
		Record: rec,
		Action: h.kind.RecordPath(rec) + "/delete",
	})
}

// Delete handles POST /<singular>/{id}/delete. It is idempotent: deleting a
// missing record succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	dataloader.Forget(r.Context(), h.kind.Collection, id)

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, h.kind.ListPath(), http.StatusSeeOther)
}

// Routes registers the handler under its kind. Fixed segments come before
// the {id} routes that would otherwise shadow them.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(dataloader.Middleware(h.kind.Collection, h.store))

		r.Get("/"+h.kind.Plural, h.List)

		base := "/" + h.kind.Singular
		r.Get(base+"/create", h.CreateForm)
		r.Post(base+"/create", h.Create)

		r.Get(base+"/{id}", h.Detail)
		r.Get(base+"/{id}/update", h.UpdateForm)
		r.Post(base+"/{id}/update", h.Update)
		r.Put(base+"/{id}/update", h.Update)
		r.Get(base+"/{id}/delete", h.DeleteForm)
		r.Post(base+"/{id}/delete", h.Delete)
	})
}
