package engine

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/pefman/naval-duel/internal/models"
)

// Rows renders the board as BoardSize strings of display characters. With
// reveal false (fog of war) only hits, misses and ability markers show and
// everything else is water.
func (b *Board) Rows(reveal bool) []string {
	rows := make([]string, models.BoardSize)
	line := make([]byte, models.BoardSize)
	for r := range b.cells {
		for c, cell := range b.cells[r] {
			line[c] = b.symbol(cell, reveal)
		}
		rows[r] = string(line)
	}
	return rows
}

func (b *Board) symbol(cell Cell, reveal bool) byte {
	switch {
	case cell.State == CellHit:
		return models.HitSymbol
	case cell.State == CellMiss:
		return models.MissSymbol
	case reveal && cell.State == CellShip:
		return b.fleet.ships[cell.Ship].Type.Symbol[0]
	case cell.Marker != "":
		return cell.Marker[0]
	}
	return models.WaterSymbol
}

// FormatRows lays rendered rows out as a grid with row and column numbers.
func FormatRows(rows []string) string {
	var buffer bytes.Buffer
	w := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	fmt.Fprint(w, "\t")
	for c := 0; c < models.BoardSize; c++ {
		fmt.Fprint(w, strconv.Itoa(c)+"\t")
	}
	fmt.Fprint(w, "\n")
	for r, row := range rows {
		fmt.Fprint(w, strconv.Itoa(r)+"\t")
		for i := 0; i < len(row); i++ {
			fmt.Fprintf(w, "%c\t", row[i])
		}
		fmt.Fprint(w, "\n")
	}
	w.Flush()
	return buffer.String()
}
