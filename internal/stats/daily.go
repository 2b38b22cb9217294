package stats

// ResetDaily clears the daily fastest wins.
func ResetDaily() {
	statsMu.Lock()
	defer statsMu.Unlock()
	for k := range dailyBest {
		delete(dailyBest, k)
	}
}

// Reset clears player records and daily wins. Intended for tests.
func Reset() {
	ResetDaily()
	statsMu.Lock()
	defer statsMu.Unlock()
	for k := range records {
		delete(records, k)
	}
}
