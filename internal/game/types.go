package game

import (
	"fmt"
	"strings"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/models"
)

// Side identifies one of the two fleets of a match.
type Side string

const (
	Human    Side = "human"
	Computer Side = "computer"
)

func (s Side) Valid() bool { return s == Human || s == Computer }

func (s Side) Opponent() Side {
	if s == Human {
		return Computer
	}
	return Human
}

func ParseSide(s string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if !side.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSide, s)
	}
	return side, nil
}

type Stage string

const (
	StageSetup      Stage = "setup"
	StageInProgress Stage = "in_progress"
	StageFinished   Stage = "finished"
)

type ActionKind string

const (
	ActionShot    ActionKind = "shot"
	ActionAbility ActionKind = "ability"
)

// Action is one human move: a shot, or an ability centred on Target.
type Action struct {
	Kind    ActionKind   `json:"kind"`
	Ability int          `json:"ability,omitempty"`
	Target  models.Coord `json:"target"`
}

// TurnResult captures the outcome of one action and a narrative log for
// display. Counted is false for actions rejected without touching the match.
type TurnResult struct {
	Turn    int            `json:"turn"`
	Counted bool           `json:"counted"`
	Actor   Side           `json:"actor"`
	Kind    ActionKind     `json:"kind"`
	Target  models.Coord   `json:"target"`
	Outcome engine.Outcome `json:"outcome,omitempty"`
	Ship    string         `json:"ship,omitempty"`    // struck ship name on hit/sunk
	Ability string         `json:"ability,omitempty"` // ability name
	Marked  []models.Coord `json:"marked,omitempty"`
	Logs    []string       `json:"logs"`
}

// Round is one loop iteration: the human action and, when the human action
// counted and did not end the match, the computer reply.
type Round struct {
	Human    TurnResult  `json:"human"`
	Computer *TurnResult `json:"computer,omitempty"`
	Status   Status      `json:"status"`
}

type Status struct {
	ID        string       `json:"id"`
	Turn      int          `json:"turn"`
	Stage     Stage        `json:"stage"`
	Remaining map[Side]int `json:"ships_remaining"`
	Finished  bool         `json:"finished"`
	Winner    Side         `json:"winner,omitempty"`
}

type AbilityStatus struct {
	models.Ability
	Remaining int `json:"remaining"`
}

type ShipStatus struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Size   int    `json:"size"`
	Hits   int    `json:"hits"`
	Afloat bool   `json:"afloat"`
}

// BoardView is one rendered grid.
type BoardView struct {
	Side   Side     `json:"side"`
	Reveal bool     `json:"reveal"`
	Rows   []string `json:"rows"`
}

// Snapshot is the human player's view of a match: the own board revealed,
// the enemy board under fog of war until the match is finished.
type Snapshot struct {
	Status    Status          `json:"status"`
	Own       BoardView       `json:"own"`
	Enemy     BoardView       `json:"enemy"`
	Abilities []AbilityStatus `json:"abilities"`
	Fleet     []ShipStatus    `json:"fleet"`
}
