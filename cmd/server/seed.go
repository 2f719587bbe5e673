package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
	"github.com/mtg9ny/recipe-backend/internal/validation"
)

var demoRecipes = []domain.Fields{
	{
		Title:        "Tomato Soup",
		Description:  "A warm soup for cold evenings.",
		Instructions: "Roast the tomatoes, then blend with **stock** and simmer for 20 minutes.",
		Ingredients:  domain.Ingredients{"tomatoes", "vegetable stock", "garlic", "olive oil"},
	},
	{
		Title:        "Pancakes",
		Description:  "Fluffy breakfast pancakes.",
		Instructions: "Whisk everything into a smooth batter and fry ladlefuls in a hot pan.",
		Ingredients:  domain.Ingredients{"flour", "milk", "eggs", "sugar"},
	},
}

var demoPosts = []domain.Fields{
	{
		Title:        "Welcome to the catalog",
		Description:  "The first post of the legacy collection.",
		Instructions: "Browse the recipes from the sidebar.",
		Ingredients:  domain.Ingredients{},
	},
}

// seed fills empty collections with demo records. Collections that already
// hold records are left alone.
func seed(ctx context.Context, stores map[string]storage.Storage) error {
	sets := map[string][]domain.Fields{
		domain.RecipeKind.Collection: demoRecipes,
		domain.PostKind.Collection:   demoPosts,
	}

	for collection, demo := range sets {
		store, ok := stores[collection]
		if !ok {
			continue
		}
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("seed: failed to count %s: %w", collection, err)
		}
		if n > 0 {
			continue
		}

		for _, in := range demo {
			fields, err := validation.Validate(in, validation.CreateRules)
			if err != nil {
				return fmt.Errorf("seed: invalid demo record %q: %w", in.Title, err)
			}
			if _, err := store.Create(ctx, fields); err != nil {
				return fmt.Errorf("seed: failed to create %s record: %w", collection, err)
			}
		}
		slog.Info("seeded demo data", "collection", collection, "count", len(demo))
	}
	return nil
}
