package catalog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/validation"
)

// maxBodyBytes caps create and update request bodies.
const maxBodyBytes = 1 << 20

// errorMessage is one entry of a non-validation errors array.
type errorMessage struct {
	Msg string `json:"msg"`
}

type errorsResponse struct {
	Errors any `json:"errors"`
}

// recordResponse adds the derived url to a record.
type recordResponse struct {
	*domain.Record
	URL string `json:"url"`
}

func newRecordResponse(r *domain.Record) recordResponse {
	return recordResponse{Record: r, URL: r.URL()}
}

// isJSONBody reports whether the request body is JSON.
func isJSONBody(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}

// wantsJSON decides between the JSON API and the HTML views. JSON is chosen
// for ?format=json, JSON bodies and clients that accept JSON but not HTML.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	if isJSONBody(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// respondJSON buffers the encoding so an encoder failure can still produce a
// clean 500.
func respondJSON(w http.ResponseWriter, status int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		slog.Error("json encoding failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorsResponse{Errors: []errorMessage{{Msg: msg}}})
}

func respondViolations(w http.ResponseWriter, verr *validation.Error) {
	respondJSON(w, http.StatusBadRequest, errorsResponse{Errors: verr.Violations})
}

// decodeFields reads the editable fields from a JSON or form body. Blank form
// ingredient inputs are dropped since forms always submit an empty slot.
func decodeFields(w http.ResponseWriter, r *http.Request) (domain.Fields, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var f domain.Fields
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			return f, err
		}
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return f, err
	}
	f.Title = r.PostForm.Get("title")
	f.Description = r.PostForm.Get("description")
	f.Instructions = r.PostForm.Get("instructions")
	f.Ingredients = domain.Ingredients{}
	for _, v := range r.PostForm["ingredients"] {
		if strings.TrimSpace(v) != "" {
			f.Ingredients = append(f.Ingredients, v)
		}
	}
	return f, nil
}

func logStoreError(r *http.Request, op string, err error) {
	slog.Error("store operation failed",
		"op", op,
		"error", err,
		"requestID", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}
