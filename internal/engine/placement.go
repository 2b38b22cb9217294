package engine

import (
	"fmt"

	"github.com/pefman/naval-duel/internal/models"
)

// DefaultPlacementAttempts caps the rejection sampling for a single ship.
const DefaultPlacementAttempts = 10000

// AutoPlace completes the fleet of b with uniformly random origins and
// directions, resampling until a placement is valid. There is no
// backtracking: each ship gets up to maxAttempts draws. The board is only
// updated when every missing ship found a spot.
func AutoPlace(b *Board, r Rand, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultPlacementAttempts
	}
	work := b.Clone()
	for _, t := range work.fleet.Missing(work.catalog) {
		placed := false
		for attempt := 0; attempt < maxAttempts && !placed; attempt++ {
			row, col := randomCoord(r, models.BoardSize)
			dir := models.Horizontal
			if r.Intn(2) == 1 {
				dir = models.Vertical
			}
			origin := models.Coord{Row: row, Col: col}
			if !work.IsValidPlacement(t.Size, origin, dir) {
				continue
			}
			if _, err := work.PlaceShip(t, origin, dir); err != nil {
				return err
			}
			placed = true
		}
		if !placed {
			return fmt.Errorf("%w: %s after %d attempts", ErrPlacementExhausted, t.Name, maxAttempts)
		}
	}
	*b = *work
	return nil
}
