// Package local implements the deterministic generator: keyword scoring
// against the template catalog with a synthesized fallback.
package local

import (
	"strings"

	"github.com/GoCodeAlone/workflowgen/catalog"
)

// Breakdown itemizes a template's score for one prompt.
type Breakdown struct {
	Template     string   `json:"template"`
	Matched      []string `json:"matched,omitempty"`
	Keywords     float64  `json:"keywords"`
	CrossCutting float64  `json:"crossCutting"`
	Flagship     float64  `json:"flagship"`
	Total        float64  `json:"total"`
}

// Explain scores t against prompt and returns the parts.
func Explain(prompt string, t *catalog.Template) Breakdown {
	p := strings.ToLower(prompt)
	b := Breakdown{Template: t.Name}

	for _, kw := range t.Keywords {
		if strings.Contains(p, kw) {
			b.Matched = append(b.Matched, kw)
			b.Keywords += KeywordWeight + float64(len(b.Matched))*ProgressiveBonus
		}
	}

	for _, cc := range CrossCuttingBonuses {
		if strings.Contains(p, cc.Signal) && t.HasKeyword(cc.Keyword) {
			b.CrossCutting += cc.Points
		}
	}

	if t.Flagship {
		b.Flagship = flagshipBonus(p)
	}

	b.Total = b.Keywords + b.CrossCutting + b.Flagship
	return b
}

// flagshipBonus expects a lowercased prompt.
func flagshipBonus(p string) float64 {
	bonus := float64(countPresent(p, EnterpriseTerms))*EnterpriseWeight +
		float64(countPresent(p, ComplexityTerms))*ComplexityWeight

	for _, co := range CoOccurrenceBonuses {
		if strings.Contains(p, co.A) && strings.Contains(p, co.B) {
			bonus += co.Points
		}
	}
	if countPresent(p, FlagshipCues) > 0 {
		bonus += FlagshipCueBonus
	}
	return bonus
}

// countPresent counts distinct terms found in p, not occurrences.
func countPresent(p string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(p, term) {
			n++
		}
	}
	return n
}

// Score returns the relevance of t to prompt. It is pure and deterministic.
func Score(prompt string, t *catalog.Template) float64 {
	return Explain(prompt, t).Total
}

// SelectBest returns the highest scoring template and its score. Ties go to
// the earliest template. A nil template means nothing scored above zero.
func SelectBest(prompt string, templates []catalog.Template) (*catalog.Template, float64) {
	var (
		best     *catalog.Template
		maxScore float64
	)
	for i := range templates {
		if s := Score(prompt, &templates[i]); s > maxScore {
			maxScore = s
			best = &templates[i]
		}
	}
	return best, maxScore
}

// Rank explains every template in catalog order.
func Rank(prompt string, templates []catalog.Template) []Breakdown {
	out := make([]Breakdown, len(templates))
	for i := range templates {
		out[i] = Explain(prompt, &templates[i])
	}
	return out
}
