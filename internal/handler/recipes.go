package handler

import (
	"net/http"
	"strconv"

	"github.com/nutrilife/campus/api/internal/middleware"
	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// RecipeHandler handles the recipe listing and rating endpoints
type RecipeHandler struct {
	recipeService *service.RecipeService
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

// List handles GET /v1/recipes - list recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := model.RecipeSearchFilters{
		Query:      r.URL.Query().Get("q"),
		Tag:        r.URL.Query().Get("tag"),
		MinProtein: queryFloat(r, "min_protein"),
		Limit:      queryInt(r, "limit"),
		Page:       queryInt(r, "page"),
	}

	page, err := h.recipeService.List(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list recipes"))
		return
	}

	WriteCollection(w, http.StatusOK, page.Recipes, &PaginationInfo{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	}, map[string]string{
		"self": "/v1/recipes",
	})
}

// Rate handles POST /v1/recipes/{recipeId}/ratings - rate a recipe
func (h *RecipeHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	var req model.RateRecipeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.recipeService.Rate(r.Context(), userID, recipeID, req.Stars); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"status": "rated"})
}

// queryFloat parses a float query parameter, 0 when absent or invalid.
func queryFloat(r *http.Request, key string) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
