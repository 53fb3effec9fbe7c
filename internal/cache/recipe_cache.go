// Package cache holds the redis cache-aside layer for recipe reads. Cache
// misses and redis failures both fall through to the database; the cache is
// never authoritative.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recipehub/internal/models"
)

type RecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecipeCache(client *redis.Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{
		client: client,
		ttl:    ttl,
	}
}

func recipeKey(id int64) string {
	return fmt.Sprintf("recipe:%d", id)
}

func recipeNameKey(id int64) string {
	return fmt.Sprintf("recipe:%d:name", id)
}

// SetRecipe caches a recipe with the configured TTL.
func (c *RecipeCache) SetRecipe(ctx context.Context, recipe *models.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, recipeKey(recipe.ID), data, c.ttl).Err()
}

// GetRecipe returns the cached recipe, or redis.Nil on a miss.
func (c *RecipeCache) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	data, err := c.client.Get(ctx, recipeKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// SetRecipeName caches just the recipe name, which is read far more often
// than the full record.
func (c *RecipeCache) SetRecipeName(ctx context.Context, id int64, name string) error {
	return c.client.Set(ctx, recipeNameKey(id), name, c.ttl).Err()
}

// GetRecipeName returns the cached name, or redis.Nil on a miss.
func (c *RecipeCache) GetRecipeName(ctx context.Context, id int64) (string, error) {
	return c.client.Get(ctx, recipeNameKey(id)).Result()
}

// Invalidate drops every cached projection of the recipe. Called after any
// mutation of the recipe or its reviews.
func (c *RecipeCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, recipeKey(id), recipeNameKey(id)).Err()
}
