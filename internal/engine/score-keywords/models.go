// internal/engine/score-keywords/models.go
package scorekeywords

type Input struct {
	Keywords      []string `json:"keywords"`
	ExcludedNames []string `json:"excludedNames,omitempty"`
}

type Output struct {
	Score        int            `json:"score"`
	Concepts     map[string]int `json:"concepts"`
	IsValidMatch bool           `json:"isValidMatch"`
}
