package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/mtg9ny/recipe-backend/internal/views"
)

// NewRouter returns the /catalog sub-router: the index page plus the routes
// of every resource.
func NewRouter(renderer *views.Renderer, resources ...*Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", Index(renderer, resources...))
	for _, h := range resources {
		h.Routes(r)
	}
	return r
}

// Index handles GET /catalog/: the number of records of each resource.
func Index(renderer *views.Renderer, resources ...*Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts := make([]views.Count, len(resources))

		g, ctx := errgroup.WithContext(r.Context())
		for i, h := range resources {
			i, h := i, h
			g.Go(func() error {
				n, err := h.store.Count(ctx)
				if err != nil {
					return err
				}
				counts[i] = views.Count{Kind: h.kind, Count: n}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			indexFailed(w, r, renderer, err)
			return
		}

		title := "Recipe Home"
		if wantsJSON(r) {
			body := map[string]any{"title": title}
			for _, c := range counts {
				body[c.Kind.Singular+"_count"] = c.Count
			}
			respondJSON(w, http.StatusOK, body)
			return
		}
		renderer.Render(w, http.StatusOK, views.PageIndex, &views.Page{
			Title:  title,
			Counts: counts,
		})
	}
}

func indexFailed(w http.ResponseWriter, r *http.Request, renderer *views.Renderer, err error) {
	if r.Context().Err() == context.Canceled {
		return
	}
	logStoreError(r, "count", err)
	if wantsJSON(r) {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	renderer.Render(w, http.StatusInternalServerError, views.PageError, &views.Page{
		Title:   "Error",
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

// NotFound answers requests for unknown routes.
func NotFound(renderer *views.Renderer) http.HandlerFunc {
	return statusHandler(renderer, http.StatusNotFound, "Page not found")
}

// MethodNotAllowed answers known routes requested with the wrong method.
func MethodNotAllowed(renderer *views.Renderer) http.HandlerFunc {
	return statusHandler(renderer, http.StatusMethodNotAllowed, "Method not allowed")
}

// InternalError answers with the generic 500 response.
func InternalError(renderer *views.Renderer) http.HandlerFunc {
	return statusHandler(renderer, http.StatusInternalServerError, "Internal server error")
}

func statusHandler(renderer *views.Renderer, status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			respondError(w, status, msg)
			return
		}
		renderer.Render(w, status, views.PageError, &views.Page{
			Title:   "Error",
			Status:  status,
			Message: msg,
		})
	}
}
