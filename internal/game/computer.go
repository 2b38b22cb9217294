package game

import "github.com/pefman/naval-duel/internal/models"

// ComputerTurn fires one computer shot at a uniformly random cell of the
// human board, redrawing only when the cell was already targeted. It keeps no
// memory between turns.
func (m *Match) ComputerTurn() (TurnResult, error) {
	if err := m.checkPlaying(Computer); err != nil {
		return TurnResult{}, err
	}
	if m.boards[Human].Untargeted() == 0 {
		return TurnResult{}, ErrNoTargets
	}
	for {
		target := models.Coord{Row: m.rng.Intn(models.BoardSize), Col: m.rng.Intn(models.BoardSize)}
		res, err := m.Shoot(Computer, target)
		if err != nil || res.Counted {
			return res, err
		}
	}
}
