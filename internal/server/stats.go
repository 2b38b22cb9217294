package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pefman/naval-duel/internal/stats"
)

// GET /api/stats/{player}
func handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	player := mux.Vars(r)["player"]
	if player == "" {
		http.Error(w, "missing player", http.StatusBadRequest)
		return
	}
	rec, _ := stats.GetPlayerStats(player)
	writeJSON(w, http.StatusOK, struct {
		stats.Record
		Accuracy float64 `json:"accuracy"`
	}{rec, rec.Accuracy()})
}

// GET /api/stats/today
func handleFastestWinToday(w http.ResponseWriter, r *http.Request) {
	res, ok := stats.GetFastestWinToday()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
