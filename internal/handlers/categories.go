package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/adaptive-budget/backend/internal/engine"
)

type CategoryHandler struct {
	response CategoriesResponse
}

type CategoryInfo struct {
	engine.CategoryDefinition
	Band *engine.Band `json:"band,omitempty"`
}

type CategoriesResponse struct {
	Currency   string         `json:"currency"`
	Categories []CategoryInfo `json:"categories"`
}

// NewCategoryHandler готовит справочник категорий из таблиц движка.
func NewCategoryHandler(tables engine.Tables) *CategoryHandler {
	categories := make([]CategoryInfo, 0, len(tables.Categories))
	for _, definition := range tables.Categories {
		info := CategoryInfo{CategoryDefinition: definition}
		if band, ok := tables.Rules[definition.Key]; ok {
			info.Band = &band
		}
		categories = append(categories, info)
	}

	return &CategoryHandler{response: CategoriesResponse{Currency: tables.Currency, Categories: categories}}
}

// List возвращает категории бюджета с допустимыми диапазонами долей.
func (h *CategoryHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.response)
}
