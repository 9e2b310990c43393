// pkg/keywordbank/bank_test.go
package keywordbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBank(t *testing.T) {
	bank := Default()

	assert.Equal(t, 12, bank.Thresholds.Floor)
	assert.Equal(t, 6, bank.Thresholds.HighConcept)
	assert.Equal(t, 10, bank.Thresholds.VeryHigh)
	assert.Equal(t, 3, bank.Thresholds.DefaultWeight)

	assert.Equal(t, 10, bank.Weight("venezuela"))
	assert.Equal(t, 7, bank.Weight("oil"))
	assert.Equal(t, 5, bank.Weight("war"))
}

func TestCanonicalTranslation(t *testing.T) {
	bank := Default()

	tests := []struct {
		name    string
		term    string
		concept string
		weight  int
	}{
		{
			name:    "country alias",
			term:    "America",
			concept: "usa",
			weight:  10,
		},
		{
			name:    "commodity alias",
			term:    "crude",
			concept: "oil",
			weight:  7,
		},
		{
			name:    "spelling variant",
			term:    "zelenskyy",
			concept: "zelensky",
			weight:  10,
		},
		{
			name:    "unknown term maps to itself",
			term:    "pottery",
			concept: "pottery",
			weight:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.concept, bank.Canonical(tt.term))
			assert.Equal(t, tt.weight, bank.Weight(tt.term))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{"case and whitespace", "  Venezuela ", "venezuela"},
		{"harakat stripped", "عُقُوبَات", "عقوبات"},
		{"tatweel stripped", "نـفـط", "نفط"},
		{"alef hamza folds", "أمريكا", "امريكا"},
		{"ta marbuta folds", "غزة", "غزه"},
		{"alef maqsura folds", "مصطفى", "مصطفي"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.term))
		})
	}
}

func TestArabicAliasesReachConcepts(t *testing.T) {
	bank := Default()

	assert.Equal(t, "venezuela", bank.Canonical("فنزويلا"))
	assert.Equal(t, 6, bank.Weight("العُقُوبَات"), "diacritized form must hit the sanctions weight")
	assert.Equal(t, "usa", bank.Canonical("امريكا"), "folded alef reaches the hamza spelling")
}

func TestCommonWords(t *testing.T) {
	bank := Default()

	assert.True(t, bank.IsCommonWord("News"))
	assert.True(t, bank.IsCommonWord("breaking"))
	assert.False(t, bank.IsCommonWord("venezuela"))
}

func TestTermsPhrasesFirst(t *testing.T) {
	bank := Default()
	terms := bank.Terms()

	phraseIdx, wordIdx := -1, -1
	for i, term := range terms {
		if term == "strait of hormuz" {
			phraseIdx = i
		}
		if term == "oil" {
			wordIdx = i
		}
	}
	assert.NotEqual(t, -1, phraseIdx)
	assert.NotEqual(t, -1, wordIdx)
	assert.Less(t, phraseIdx, wordIdx, "multi-word phrases must be scanned before single words")
}

func TestLoadValidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	content := `{
		"version": "2",
		"weights": {"venezuela": 10, "oil": 7},
		"concepts": {"oil": ["oil", "crude"]},
		"thresholds": {"floor": 12, "highConcept": 6, "veryHigh": 10, "defaultWeight": 3}
	}`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	bank, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "2", bank.Version)
	assert.Equal(t, 7, bank.Weight("crude"))
}

func TestLoadRejectsInvalidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	content := `{"weights": {"venezuela": 99}, "thresholds": {"floor": 12, "highConcept": 6, "veryHigh": 10, "defaultWeight": 3}}`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
