package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/repository"
)

// RecipeStore is the recipe-side store interface.
type RecipeStore interface {
	List(ctx context.Context) ([]*model.Recipe, error)
	AddRating(ctx context.Context, recipeID, userID string, stars int) error
}

// RecipeService serves the public recipe listing and the rating
// operation.
type RecipeService struct {
	recipes RecipeStore
}

// NewRecipeService constructs the recipe service.
func NewRecipeService(recipes RecipeStore) *RecipeService {
	return &RecipeService{recipes: recipes}
}

// RecipePage is one page of the public recipe listing.
type RecipePage struct {
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
	Total   int                   `json:"total"`
	Recipes []model.RecipeSummary `json:"data"`
}

// List returns recipes filtered by free text, protein floor and tag,
// sorted by name, paginated.
func (s *RecipeService) List(ctx context.Context, filters model.RecipeSearchFilters) (*RecipePage, error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(filters.Query))
	tag := strings.ToLower(strings.TrimSpace(filters.Tag))

	matched := make([]*model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Protein < filters.MinProtein {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Name), q) {
			continue
		}
		if tag != "" && !hasTag(r.Tags, tag) {
			continue
		}
		matched = append(matched, r)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Name < matched[j].Name
	})

	limit, page := clampPagination(filters.Limit, filters.Page)
	pageItems := paginate(matched, limit, page)

	summaries := make([]model.RecipeSummary, 0, len(pageItems))
	for _, r := range pageItems {
		summaries = append(summaries, r.Summary())
	}

	return &RecipePage{
		Page:    page,
		Limit:   limit,
		Total:   len(matched),
		Recipes: summaries,
	}, nil
}

// Rate records one user's star rating for a recipe. A user rates a
// recipe at most once; the aggregate update commits atomically with the
// rating document inside the store.
func (s *RecipeService) Rate(ctx context.Context, userID, recipeID string, stars int) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if recipeID == "" {
		return ErrRecipeNotFound
	}
	if stars < 1 || stars > 5 {
		return ErrInvalidStars
	}

	err := s.recipes.AddRating(ctx, recipeID, userID, stars)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRecipeMissing):
		return ErrRecipeNotFound
	case errors.Is(err, repository.ErrAlreadyRated):
		return ErrAlreadyRated
	}
	return fmt.Errorf("add rating: %w", err)
}

// hasTag checks a tag list case-insensitively.
func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}
