// pkg/keywordbank/defaults.go
package keywordbank

// Default returns the built-in weight bank tuned for a geopolitics and
// macro-finance channel. Deployments override it with a JSON file via
// engine.keywords.bank_path.
func Default() *Bank {
	b := &Bank{
		Version: "1",
		Weights: map[string]int{
			// Heads of state and flashpoint actors
			"trump":     10,
			"putin":     10,
			"xi":        10,
			"netanyahu": 10,
			"maduro":    10,
			"zelensky":  10,

			// Countries at the center of coverage
			"usa":       10,
			"china":     10,
			"russia":    10,
			"iran":      10,
			"venezuela": 10,

			// Organizations that move markets
			"fed":    10,
			"opec":   10,
			"nato":   10,
			"hamas":  10,
			"tesla":  10,
			"nvidia": 10,
			"openai": 10,
			"aramco": 10,

			// Chokepoints and hard power
			"suez canal":       8,
			"strait of hormuz": 8,
			"nuclear":          8,
			"missile":          8,
			"drone":            8,

			// Commodities and assets
			"oil":     7,
			"gas":     7,
			"gold":    7,
			"dollar":  7,
			"bitcoin": 7,
			"stocks":  7,

			// Macro levers
			"inflation":     6,
			"tariff":        6,
			"sanctions":     6,
			"ai":            6,
			"semiconductor": 6,

			// Conflict verbs
			"war":      5,
			"invasion": 5,
			"strike":   5,

			// Process words
			"election": 4,
			"summit":   4,
			"crisis":   4,

			// Movement words
			"surge": 3,
			"crash": 3,

			// Generic context, too common to gate on alone
			"economy":    2,
			"market":     2,
			"president":  2,
			"government": 2,
		},
		Concepts: map[string][]string{
			"usa":       {"usa", "america", "american", "united states", "u.s.", "us economy", "washington", "أمريكا"},
			"china":     {"china", "chinese", "beijing", "prc"},
			"russia":    {"russia", "russian", "moscow", "kremlin"},
			"iran":      {"iran", "iranian", "tehran"},
			"venezuela": {"venezuela", "venezuelan", "caracas", "فنزويلا"},
			"trump":     {"trump", "donald trump"},
			"putin":     {"putin", "vladimir putin"},
			"xi":        {"xi", "xi jinping"},
			"zelensky":  {"zelensky", "zelenskyy", "zelenskiy"},
			"maduro":    {"maduro", "nicolas maduro"},
			"fed":       {"fed", "federal reserve", "powell"},
			"oil":       {"oil", "crude", "brent", "wti", "petroleum", "نفط", "النفط"},
			"tariff":    {"tariff", "tariffs", "trade war"},
			"sanctions": {"sanctions", "sanction", "embargo", "عقوبات", "العقوبات"},
			"ai":        {"ai", "artificial intelligence"},
			"bitcoin":   {"bitcoin", "btc", "crypto"},
			"stocks":    {"stocks", "stock market", "equities", "wall street"},
			"war":       {"war", "warfare", "حرب", "الحرب"},
		},
		CommonWords: []string{
			"news", "world", "today", "breaking", "live", "daily",
			"report", "update", "analysis", "channel",
		},
		Thresholds: Thresholds{
			Floor:         12,
			HighConcept:   6,
			VeryHigh:      10,
			DefaultWeight: 3,
		},
	}
	b.buildIndexes()
	return b
}
