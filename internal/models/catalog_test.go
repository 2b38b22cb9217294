package models_test

import (
	"math"
	"testing"

	"github.com/pefman/naval-duel/internal/models"
)

func TestCatalog_DefaultIsValid(t *testing.T) {
	cat := models.DefaultCatalog()
	if err := cat.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, have := 17, cat.TotalCells(); want != have {
		t.Errorf("total cells: want=%d, have=%d", want, have)
	}
}

func TestCatalog_ValidateRejectsOversizedFleets(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.Catalog)
	}{
		{"count wraps cell total", func(c *models.Catalog) {
			c.Ships = []models.ShipType{{ID: 0, Name: "A", Symbol: "A", Size: 4, Count: 1 << 62}}
		}},
		{"count past board", func(c *models.Catalog) { c.Ships[0].Count = models.BoardSize*models.BoardSize + 1 }},
		{"count huge", func(c *models.Catalog) { c.Ships[3].Count = math.MaxInt }},
		{"fleet needs more cells", func(c *models.Catalog) { c.Ships[3].Count = 50 }},
		{"radius past board", func(c *models.Catalog) { c.Abilities[0].Radius = 1e9 }},
		{"radius one past board", func(c *models.Catalog) { c.Abilities[2].Radius = models.BoardSize + 1 }},
		{"negative radius", func(c *models.Catalog) { c.Abilities[1].Radius = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := models.DefaultCatalog()
			tt.modify(&cat)
			if err := cat.Validate(); err == nil {
				t.Error("want error, have nil")
			}
		})
	}
}

func TestCatalog_ValidateAcceptsBoardWideRadius(t *testing.T) {
	cat := models.DefaultCatalog()
	cat.Abilities[2].Radius = models.BoardSize
	if err := cat.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
