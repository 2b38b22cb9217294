package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/game"
	"github.com/pefman/naval-duel/internal/models"
)

var errQuit = errors.New("quit")

type console struct {
	in    *bufio.Scanner
	out   io.Writer
	rules func() models.Catalog // shown by the instructions screen
}

func newConsole(in io.Reader, out io.Writer, rules func() models.Catalog) *console {
	return &console{in: bufio.NewScanner(in), out: out, rules: rules}
}

func (c *console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt reads one trimmed line. End of input counts as quitting.
func (c *console) prompt(format string, args ...interface{}) (string, error) {
	c.printf(format, args...)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// ========================= Menu =========================

// run shows the main menu until the player quits.
func (c *console) run(open func() (session, error)) error {
	for {
		c.printf("\n=== NAVAL DUEL ===\n1) New game\n2) Instructions\n3) Quit\n")
		choice, err := c.prompt("> ")
		if err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
		switch strings.ToLower(choice) {
		case "1", "n", "new":
			s, err := open()
			if err != nil {
				c.printf("error: could not start a game: %v\n", err)
				continue
			}
			if err := c.play(s); err != nil {
				if errors.Is(err, errQuit) {
					c.printf("Game abandoned.\n")
					continue
				}
				return err
			}
		case "2", "i", "instructions":
			c.instructions(c.rules())
		case "3", "q", "quit":
			c.printf("Goodbye.\n")
			return nil
		default:
			c.printf("Unknown option %q\n", choice)
		}
	}
}

func (c *console) instructions(cat models.Catalog) {
	c.printf(`
Sink the computer's fleet before it sinks yours.

Both fleets sit on a %[1]dx%[1]d grid. Rows and columns are numbered 0-%[2]d.
Ships are placed in a straight line, horizontally (H, to the right) or
vertically (V, downwards), and may not overlap or leave the grid.

Each turn you either fire a shot at one cell, or use an ability. Abilities
reveal the area around a cell on the enemy grid without damaging anything.
The computer answers every turn with one shot of its own. Shots outside
the grid or at a cell already targeted cost nothing; pick again.

A ship sinks when every one of its cells is hit. First to sink the whole
enemy fleet wins.
`, models.BoardSize, models.BoardSize-1)
	c.legend(cat)
}

func (c *console) legend(cat models.Catalog) {
	c.printf("\nLegend:\n  %c  water\n  %c  hit\n  %c  miss\n", models.WaterSymbol, models.HitSymbol, models.MissSymbol)
	for _, s := range cat.Ships {
		c.printf("  %s  %s (size %d, x%d)\n", s.Symbol, s.Name, s.Size, s.Count)
	}
	for _, a := range cat.Abilities {
		c.printf("  %s  %s marker (radius %d)\n", a.Symbol, a.Name, a.Radius)
	}
}

// ========================= Game =========================

func (c *console) play(s session) error {
	if err := c.placeFleet(s); err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	c.printf("\nAll ships placed. The battle begins!\n")

	for {
		snap, err := s.Snapshot()
		if err != nil {
			return err
		}
		if snap.Status.Finished {
			c.summary(snap)
			return nil
		}
		c.status(snap)

		choice, err := c.prompt("Action: [s]hoot, [a]bility, [l]egend, [q]uit > ")
		if err != nil {
			return err
		}
		var action game.Action
		switch strings.ToLower(choice) {
		case "s", "shoot":
			target, err := c.coord("Target row col > ")
			if err != nil {
				return err
			}
			action = game.Action{Kind: game.ActionShot, Target: target}
		case "a", "ability":
			a, err := c.ability(snap.Abilities)
			if err != nil {
				return err
			}
			action = a
		case "l", "legend":
			c.legend(s.Rules())
			continue
		case "q", "quit":
			return errQuit
		default:
			c.printf("Unknown action %q\n", choice)
			continue
		}

		round, err := s.Play(action)
		if err != nil {
			c.printf("error: %v\n", err)
			continue
		}
		c.report(round)
	}
}

func (c *console) placeFleet(s session) error {
	cat := s.Rules()
	mode, err := c.prompt("\nPlace your fleet: [m]anual or [a]uto > ")
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(mode), "a") {
		return s.AutoPlace()
	}

	for _, t := range cat.Ships {
		for i := 1; i <= t.Count; i++ {
			for {
				snap, err := s.Snapshot()
				if err != nil {
					return err
				}
				c.printf("\n%s", engine.FormatRows(snap.Own.Rows))
				line, err := c.prompt("%s %d/%d (size %d): row col H|V, or 'auto' for the rest > ", t.Name, i, t.Count, t.Size)
				if err != nil {
					return err
				}
				if strings.EqualFold(line, "auto") {
					return s.AutoPlace()
				}
				origin, dir, err := parsePlacement(line)
				if err == nil {
					err = s.PlaceShip(t.ID, origin, dir)
				}
				if err != nil {
					c.printf("error: %v\n", err)
					continue
				}
				break
			}
		}
	}
	return nil
}

func (c *console) coord(label string) (models.Coord, error) {
	for {
		line, err := c.prompt(label)
		if err != nil {
			return models.Coord{}, err
		}
		at, err := parseCoord(strings.Fields(line))
		if err != nil {
			c.printf("error: %v\n", err)
			continue
		}
		return at, nil
	}
}

func (c *console) ability(list []game.AbilityStatus) (game.Action, error) {
	c.printf("\nAbilities:\n")
	for _, a := range list {
		c.printf("  %d) %s (radius %d) - %d uses left\n", a.ID, a.Name, a.Radius, a.Remaining)
	}
	for {
		line, err := c.prompt("Ability number > ")
		if err != nil {
			return game.Action{}, err
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			c.printf("error: %q is not a number\n", line)
			continue
		}
		center, err := c.coord("Centre row col > ")
		if err != nil {
			return game.Action{}, err
		}
		return game.Action{Kind: game.ActionAbility, Ability: id, Target: center}, nil
	}
}

// ========================= Output =========================

func (c *console) status(snap game.Snapshot) {
	st := snap.Status
	c.printf("\n--- Turn %d | your ships: %d | enemy ships: %d ---\n",
		st.Turn+1, st.Remaining[game.Human], st.Remaining[game.Computer])
	c.printf("\nYour fleet:\n%s", engine.FormatRows(snap.Own.Rows))
	c.printf("\nEnemy waters:\n%s", engine.FormatRows(snap.Enemy.Rows))
	var uses []string
	for _, a := range snap.Abilities {
		uses = append(uses, fmt.Sprintf("%s x%d", a.Name, a.Remaining))
	}
	if len(uses) > 0 {
		c.printf("Abilities: %s\n", strings.Join(uses, ", "))
	}
}

func (c *console) report(round game.Round) {
	for _, l := range round.Human.Logs {
		c.printf("%s\n", l)
	}
	if !round.Human.Counted {
		c.printf("That shot does not count, try again.\n")
	}
	if round.Human.Outcome == engine.Sunk {
		c.printf("You sank the enemy %s!\n", round.Human.Ship)
	}
	if round.Computer == nil {
		return
	}
	for _, l := range round.Computer.Logs {
		c.printf("%s\n", l)
	}
	if round.Computer.Outcome == engine.Sunk {
		c.printf("The computer sank your %s!\n", round.Computer.Ship)
	}
}

func (c *console) summary(snap game.Snapshot) {
	st := snap.Status
	c.printf("\n=== GAME OVER ===\n")
	if st.Winner == game.Human {
		c.printf("You win! The enemy fleet is destroyed.\n")
	} else {
		c.printf("The computer wins. Your fleet is destroyed.\n")
	}
	c.printf("Total turns: %d\n", st.Turn)
	c.printf("\nYour fleet:\n%s", engine.FormatRows(snap.Own.Rows))
	c.printf("\nEnemy fleet:\n%s", engine.FormatRows(snap.Enemy.Rows))
}

// ========================= Parsing =========================

func parseCoord(fields []string) (models.Coord, error) {
	if len(fields) != 2 {
		return models.Coord{}, fmt.Errorf("want row and column, got %d values", len(fields))
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.Coord{}, fmt.Errorf("row %q is not a number", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.Coord{}, fmt.Errorf("column %q is not a number", fields[1])
	}
	return models.Coord{Row: row, Col: col}, nil
}

func parsePlacement(line string) (models.Coord, models.Direction, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return models.Coord{}, "", fmt.Errorf("want row, column and direction, got %q", line)
	}
	origin, err := parseCoord(fields[:2])
	if err != nil {
		return models.Coord{}, "", err
	}
	dir, err := models.ParseDirection(fields[2])
	if err != nil {
		return models.Coord{}, "", err
	}
	return origin, dir, nil
}
