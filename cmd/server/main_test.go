package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/mtg9ny/recipe-backend/internal/config"
	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
	"github.com/mtg9ny/recipe-backend/internal/storage/inmemory"
)

func parseConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var cfg *config.Config
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}
	err := cmd.Run(context.Background(), append([]string{name}, args...))
	return cfg, err
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	cfg, err := parseConfig(t, "--storage", "in-memory", "--port", "8081", "--log-level", "debug", "--seed")
	require.NoError(t, err)
	assert.Equal(t, config.StorageInMemory, cfg.Storage)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Seed)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := parseConfig(t, "--storage", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestBuild_Seeds(t *testing.T) {
	cfg, err := parseConfig(t, "--storage", "in-memory", "--seed")
	require.NoError(t, err)

	backend := inmemory.NewBackend()
	srv, err := build(context.Background(), cfg, backend)
	require.NoError(t, err)

	recipes, err := backend.Open(context.Background(), domain.RecipeKind)
	require.NoError(t, err)
	n, err := recipes.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoRecipes)), n)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/catalog/?format=json", nil)
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"Recipe Home","recipe_count":2,"post_count":1}`, rec.Body.String())
}

func TestSeed_SkipsFilledCollections(t *testing.T) {
	ctx := context.Background()
	recipes := inmemory.New()
	_, err := recipes.Create(ctx, domain.Fields{Title: "Existing", Description: "Already here", Instructions: "Nothing to do"})
	require.NoError(t, err)

	stores := map[string]storage.Storage{
		domain.RecipeKind.Collection: recipes,
		domain.PostKind.Collection:   inmemory.New(),
	}
	require.NoError(t, seed(ctx, stores))

	n, err := recipes.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = stores[domain.PostKind.Collection].Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoPosts)), n)
}
