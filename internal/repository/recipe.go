package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/nutrilife/campus/api/internal/database"
	"github.com/nutrilife/campus/api/internal/model"
)

// Rating guard markers thrown by the transaction script.
const (
	throwRecipeMissing = "rating recipe missing"
	throwAlreadyRated  = "already rated"
)

// Rating guard errors surfaced to the service layer.
var (
	// ErrRecipeMissing indicates the recipe does not exist.
	ErrRecipeMissing = errors.New("recipe does not exist")

	// ErrAlreadyRated indicates the user already rated this recipe.
	ErrAlreadyRated = errors.New("user already rated recipe")
)

// RecipeRepository handles recipe and rating data access
type RecipeRepository struct {
	db database.Database
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db database.Database) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// GetByID retrieves a recipe by ID. Returns (nil, nil) when missing.
func (r *RecipeRepository) GetByID(ctx context.Context, recipeID string) (*model.Recipe, error) {
	query := `SELECT * FROM type::record($recipe_id)`
	vars := map[string]interface{}{"recipe_id": recipeRecordID(recipeID)}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseRecipeResult(result)
}

// List returns all recipes. Filtering, sorting and pagination happen in
// the service layer over this snapshot.
func (r *RecipeRepository) List(ctx context.Context) ([]*model.Recipe, error) {
	result, err := r.db.Query(ctx, `SELECT * FROM recipe`, nil)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	recipes := make([]*model.Recipe, 0, len(rows))
	for _, row := range rows {
		recipe, err := parseRecipeResult(row)
		if err != nil {
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// AddRating records one user's rating and folds it into the recipe's
// aggregates in the same transaction. Uniqueness per (recipe, user) and
// recipe existence are guarded inside the script, so the aggregate can
// never drift from the rating documents.
func (r *RecipeRepository) AddRating(ctx context.Context, recipeID, userID string, stars int) error {
	query := `BEGIN TRANSACTION;
LET $existing = SELECT * FROM rating WHERE recipe = type::record($recipe_id) AND user_id = $user_id;
IF array::len($existing) > 0 { THROW "` + throwAlreadyRated + `" };
LET $rec = UPDATE type::record($recipe_id)
	SET rating_sum = (IF type::is::number(rating_sum) { rating_sum } ELSE { 0 }) + $stars,
	    rating_count = (IF type::is::int(rating_count) { rating_count } ELSE { 0 }) + 1
	RETURN AFTER;
IF array::len($rec) = 0 { THROW "` + throwRecipeMissing + `" };
CREATE rating CONTENT {
	recipe: type::record($recipe_id),
	user_id: $user_id,
	stars: $stars,
	created_on: time::now()
};
COMMIT TRANSACTION;`

	vars := map[string]interface{}{
		"recipe_id": recipeRecordID(recipeID),
		"user_id":   userID,
		"stars":     stars,
	}

	err := r.db.Execute(ctx, query, vars)
	switch {
	case throwMessageContains(err, throwAlreadyRated):
		return ErrAlreadyRated
	case throwMessageContains(err, throwRecipeMissing):
		return ErrRecipeMissing
	}
	return err
}

// recipeRecordID qualifies a bare recipe ID with its table name.
func recipeRecordID(id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return "recipe:" + id
}

// parseRecipeResult maps a SurrealDB row to a model.Recipe.
func parseRecipeResult(result interface{}) (*model.Recipe, error) {
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}

	return &model.Recipe{
		ID:          extractRecordID(m["id"]),
		Name:        getString(m, "name"),
		Protein:     getFloat(m, "protein"),
		Calories:    getFloat(m, "calories"),
		Tags:        getStringSlice(m, "tags"),
		RatingSum:   getFloat(m, "rating_sum"),
		RatingCount: getInt(m, "rating_count"),
		CreatedOn:   parseTime(m["created_on"]),
	}, nil
}
