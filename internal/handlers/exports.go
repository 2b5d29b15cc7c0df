package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/adaptive-budget/backend/internal/models"
)

const totalRowKey = "total"

// ExportJSON выгружает бюджет в JSON-файл.
func (h *BudgetHandler) ExportJSON(c echo.Context) error {
	stored, err := h.loadBudget(c)
	if err != nil || stored == nil {
		return err
	}

	filename := "budget-" + stored.ID.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, stored)
}

// ExportCSV выгружает распределение бюджета по категориям в CSV-файл.
func (h *BudgetHandler) ExportCSV(c echo.Context) error {
	stored, err := h.loadBudget(c)
	if err != nil || stored == nil {
		return err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeBudgetCSV(writer, stored.Budget); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "budget-" + stored.ID.String() + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func writeBudgetCSV(writer *csv.Writer, budget models.Budget) error {
	header := []string{
		"category",
		"name",
		"amount",
		"percentage",
		"currency",
		"explanation",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	percentageSum := 0
	for _, key := range exportOrder(budget.Categories) {
		category := budget.Categories[key]
		percentageSum += category.Percentage
		record := []string{
			key,
			category.Name,
			formatInt64(category.Amount),
			strconv.Itoa(category.Percentage),
			budget.Metadata.Currency,
			budget.Explanations.Categories[key],
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Write([]string{
		totalRowKey,
		"",
		formatInt64(budget.TotalAllocated),
		strconv.Itoa(percentageSum),
		budget.Metadata.Currency,
		budget.Explanations.Overall,
	})
}

// exportOrder lists the largest allocations first; ties fall back to the key.
func exportOrder(categories map[string]models.CategoryAllocation) []string {
	keys := make([]string, 0, len(categories))
	for key := range categories {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		left, right := categories[keys[i]], categories[keys[j]]
		if left.Amount != right.Amount {
			return left.Amount > right.Amount
		}
		return keys[i] < keys[j]
	})
	return keys
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}
