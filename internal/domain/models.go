package domain

import (
	"encoding/json"
	"fmt"
)

// MaxTitleLength is the maximum number of characters in a record title.
const MaxTitleLength = 100

// Record is a catalog entry. Recipes and legacy posts share this shape.
type Record struct {
	ID           string      `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string      `json:"title" gorm:"type:text;not null"`
	Description  string      `json:"description" gorm:"type:text;not null"`
	Instructions string      `json:"instructions" gorm:"type:text;not null"`
	Ingredients  Ingredients `json:"ingredients" gorm:"type:jsonb;serializer:json;not null"`
}

// URL returns the record path relative to its resource, e.g. "/<id>".
func (r *Record) URL() string {
	return "/" + r.ID
}

// Fields are the editable fields of a Record. Create and update both take
// the full set; update replaces all four.
type Fields struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Instructions string      `json:"instructions"`
	Ingredients  Ingredients `json:"ingredients"`
}

// Ingredients is the ordered ingredient list. It decodes from a JSON array,
// a single string or null, and always encodes as an array.
type Ingredients []string

// UnmarshalJSON implements json.Unmarshaler.
func (in *Ingredients) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*in = Ingredients{}
	case string:
		*in = Ingredients{v}
	case []any:
		list := make(Ingredients, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("ingredients[%d]: expected string, got %T", i, item)
			}
			list = append(list, s)
		}
		*in = list
	default:
		return fmt.Errorf("ingredients: expected string or array, got %T", raw)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (in Ingredients) MarshalJSON() ([]byte, error) {
	if in == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(in))
}

// Kind describes one resource collection served by the catalog.
type Kind struct {
	// Singular is used in paths and JSON keys, e.g. "recipe".
	Singular string
	// Plural is the list path and list JSON key, e.g. "recipes".
	Plural string
	// Collection is the store collection or table name.
	Collection string
	// Title is the human readable name used in views, e.g. "Recipe".
	Title string
}

var (
	// RecipeKind is the current resource.
	RecipeKind = Kind{Singular: "recipe", Plural: "recipes", Collection: "recipes", Title: "Recipe"}
	// PostKind is the legacy resource with the same shape as recipes.
	PostKind = Kind{Singular: "post", Plural: "posts", Collection: "posts", Title: "Post"}
)

// CatalogPrefix is the mount point of every resource.
const CatalogPrefix = "/catalog"

// ListPath returns the path of the listing, e.g. "/catalog/recipes".
func (k Kind) ListPath() string {
	return CatalogPrefix + "/" + k.Plural
}

// RecordPath returns the path of a single record, e.g. "/catalog/recipe/<id>".
func (k Kind) RecordPath(r *Record) string {
	return CatalogPrefix + "/" + k.Singular + r.URL()
}
