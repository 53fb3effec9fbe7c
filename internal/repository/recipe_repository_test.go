package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchComposesPredicatesForPageAndCount(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	minRating := 4.0
	query := RecipeSearchQuery{
		Keyword:   "Pasta",
		Category:  "Dinner",
		MinRating: &minRating,
		Page:      2,
		PageSize:  10,
		SortKey:   SortByRating,
	}

	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Count and page share the same predicate list.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "recipes" WHERE \(LOWER\(name\) LIKE \$1 OR LOWER\(description\) LIKE \$2\) AND category = \$3 AND aggregated_rating >= \$4`).
		WithArgs("%pasta%", "%pasta%", "Dinner", minRating).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT \* FROM "recipes" WHERE (.+) ORDER BY aggregated_rating DESC NULLS LAST, id DESC LIMIT \$5 OFFSET \$6`).
		WithArgs("%pasta%", "%pasta%", "Dinner", minRating, 10, 10).
		WillReturnRows(recipeRows().
			AddRow(31, "Pasta Carbonara", 1, published, "PT20M", "PT10M", "PT30M", 3).
			AddRow(18, "Pasta Primavera", 2, published, "PT25M", "PT15M", "PT40M", 1))
	mock.ExpectQuery(`SELECT \* FROM "recipe_ingredients" WHERE "recipe_ingredients"\."recipe_id" IN \(\$1,\$2\) ORDER BY LOWER\(name\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipe_id", "name"}).
			AddRow(1, 31, "egg").
			AddRow(2, 31, "spaghetti"))

	recipes, total, err := repo.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, recipes, 2)
	assert.Equal(t, int64(31), recipes[0].ID)
	require.Len(t, recipes[0].Ingredients, 2)
	assert.Equal(t, "egg", recipes[0].Ingredients[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchUnknownSortKeyFallsBackToDate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "recipes"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY date_published DESC, id DESC`).
		WillReturnRows(recipeRows())

	_, total, err := repo.Search(context.Background(), RecipeSearchQuery{
		Page: 1, PageSize: 20, SortKey: "likes_asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTimesWritesAllThreeColumnsInOneStatement(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	published := time.Date(2023, 7, 4, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "recipes" WHERE "recipes"\."id" = \$1 (.+) FOR UPDATE`).
		WithArgs(int64(12), 1).
		WillReturnRows(recipeRows().
			AddRow(12, "Goulash", 3, published, "PT1H", "oops not a duration", "PT1H", 0))
	// Stored prep text is unparseable and contributes zero to the total.
	mock.ExpectExec(`UPDATE "recipes" SET "cook_time"=\$1,"prep_time"=\$2,"total_time"=\$3 WHERE id = \$4`).
		WithArgs("PT30M", "oops not a duration", "PT30M", int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cook := "PT30M"
	updated, err := repo.UpdateTimes(context.Background(), 12, &cook, nil)
	require.NoError(t, err)
	assert.Equal(t, "PT30M", updated.CookTime)
	assert.Equal(t, "oops not a duration", updated.PrepTime)
	assert.Equal(t, "PT30M", updated.TotalTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascadesInDependencyOrder(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "review_likes" WHERE review_id IN \(SELECT "id" FROM "reviews" WHERE recipe_id = \$1\)`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "reviews" WHERE recipe_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "recipe_ingredients" WHERE recipe_id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM "recipes" WHERE "recipes"\."id" = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRecipe(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "review_likes"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "reviews"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "recipe_ingredients"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "recipes"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 404)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosestCaloriePair(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ABS(a.calories - b.calories)`)).
		WillReturnRows(sqlmock.NewRows([]string{"low_id", "high_id", "difference"}).
			AddRow(4, 9, 1.5))

	pair, err := repo.ClosestCaloriePair(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, int64(4), pair.LowID)
	assert.Equal(t, int64(9), pair.HighID)
	assert.Equal(t, 1.5, pair.Difference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosestCaloriePairTooFewRecipes(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ABS(a.calories - b.calories)`)).
		WillReturnRows(sqlmock.NewRows([]string{"low_id", "high_id", "difference"}))

	pair, err := repo.ClosestCaloriePair(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pair)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopComplex(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`ORDER BY ingredient_count DESC, r\.id ASC LIMIT \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "name", "ingredient_count"}).
			AddRow(2, "Cassoulet", 18).
			AddRow(5, "Paella", 14).
			AddRow(1, "Toast", 2))

	results, err := repo.TopComplex(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Cassoulet", results[0].Name)
	assert.Equal(t, 18, results[0].IngredientCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
