package model

import "time"

// Recipe is a campus recipe users can browse and rate.
type Recipe struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Protein  float64  `json:"protein"`
	Calories float64  `json:"calories"`
	Tags     []string `json:"tags,omitempty"`

	// Rating aggregates, updated atomically with each rating document.
	RatingSum   float64 `json:"rating_sum"`
	RatingCount int     `json:"rating_count"`

	CreatedOn time.Time `json:"created_on"`
}

// RatingAvg returns the mean star rating, 0 when unrated.
func (r *Recipe) RatingAvg() float64 {
	if r.RatingCount == 0 {
		return 0
	}
	return r.RatingSum / float64(r.RatingCount)
}

// RecipeSummary is the public listing projection of a recipe.
type RecipeSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Protein   float64  `json:"protein"`
	Calories  float64  `json:"calories"`
	RatingAvg float64  `json:"rating_avg"`
	Tags      []string `json:"tags"`
}

// Summary projects a recipe into its public listing form.
func (r *Recipe) Summary() RecipeSummary {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return RecipeSummary{
		ID:        r.ID,
		Name:      r.Name,
		Protein:   r.Protein,
		Calories:  r.Calories,
		RatingAvg: r.RatingAvg(),
		Tags:      tags,
	}
}

// Rating is one user's star rating of a recipe. One rating exists per
// (recipe, user) pair and is never updated.
type Rating struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	CreatedOn time.Time `json:"created_on"`
}

// RecipeSearchFilters holds query parameters for the public recipe listing.
type RecipeSearchFilters struct {
	Query      string
	MinProtein float64
	Tag        string
	Limit      int
	Page       int
}

// RateRecipeRequest is the request body for rating a recipe.
type RateRecipeRequest struct {
	Stars int `json:"stars"`
}
