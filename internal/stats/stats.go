package stats

import (
	"strings"
	"sync"
	"time"
)

// Result is the summary of one finished match from the human player's side.
type Result struct {
	Player    string    `json:"player"`
	MatchID   string    `json:"match_id"`
	Won       bool      `json:"won"`
	Turns     int       `json:"turns"`
	Shots     int       `json:"shots"`
	Hits      int       `json:"hits"`
	Abilities int       `json:"abilities"`
	At        time.Time `json:"at"`
}

// Record aggregates every result of one player.
type Record struct {
	Player        string    `json:"player"`
	Played        int       `json:"played"`
	Won           int       `json:"won"`
	Lost          int       `json:"lost"`
	Shots         int       `json:"shots"`
	Hits          int       `json:"hits"`
	AbilitiesUsed int       `json:"abilities_used"`
	BestWinTurns  int       `json:"best_win_turns,omitempty"`
	LastPlayed    time.Time `json:"last_played"`
}

// Accuracy is hits per shot, 0 before the first shot.
func (r Record) Accuracy() float64 {
	if r.Shots == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Shots)
}

// In-memory only; records are lost on restart.
var (
	statsMu sync.Mutex
	records = make(map[string]*Record)
	// fastest win per UTC day, keyed YYYY-MM-DD
	dailyBest = make(map[string]Result)
)

func key(player string) string { return strings.ToLower(strings.TrimSpace(player)) }

// SaveResult folds res into the player's record and, for a win, into the
// daily fastest win.
func SaveResult(res Result) {
	if key(res.Player) == "" {
		return
	}
	if res.At.IsZero() {
		res.At = time.Now()
	}
	statsMu.Lock()
	defer statsMu.Unlock()
	rec := records[key(res.Player)]
	if rec == nil {
		rec = &Record{Player: res.Player}
		records[key(res.Player)] = rec
	}
	rec.Played++
	if res.Won {
		rec.Won++
		if rec.BestWinTurns == 0 || res.Turns < rec.BestWinTurns {
			rec.BestWinTurns = res.Turns
		}
	} else {
		rec.Lost++
	}
	rec.Shots += res.Shots
	rec.Hits += res.Hits
	rec.AbilitiesUsed += res.Abilities
	rec.LastPlayed = res.At

	if res.Won {
		saveDailyBest(res)
	}
}

// GetPlayerStats returns a copy of the player's record; ok is false for a
// player with no finished matches.
func GetPlayerStats(player string) (Record, bool) {
	statsMu.Lock()
	defer statsMu.Unlock()
	if rec, ok := records[key(player)]; ok {
		return *rec, true
	}
	return Record{Player: player}, false
}

// saveDailyBest keeps the win with the fewest turns, tie-broken by hits.
// Callers hold statsMu.
func saveDailyBest(res Result) {
	dateKey := res.At.UTC().Format("2006-01-02")
	cur, ok := dailyBest[dateKey]
	if !ok || res.Turns < cur.Turns || (res.Turns == cur.Turns && res.Hits > cur.Hits) {
		dailyBest[dateKey] = res
	}
}

// GetFastestWinToday returns today's fastest win in UTC.
func GetFastestWinToday() (Result, bool) {
	dateKey := time.Now().UTC().Format("2006-01-02")
	statsMu.Lock()
	defer statsMu.Unlock()
	res, ok := dailyBest[dateKey]
	return res, ok
}
