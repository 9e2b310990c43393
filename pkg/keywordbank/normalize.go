// pkg/keywordbank/normalize.go
package keywordbank

import "strings"

// arabicFold collapses letter variants to one form: alef with hamza or
// madda to bare alef, alef maqsura to ya, ta marbuta to ha.
var arabicFold = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ٱ': 'ا',
	'ى': 'ي',
	'ة': 'ه',
}

// Normalize lower-cases and trims a term and folds Arabic surface
// variation so diacritized or variant spellings hit the same bank entry.
// Harakat, the dagger alef and tatweel are stripped outright.
func Normalize(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if (r >= 0x064B && r <= 0x065F) || r == 0x0670 || r == 0x0640 {
			continue
		}
		if folded, ok := arabicFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}
