package usecase

import (
	"fmt"
	"strings"

	"Midas/internal/domain/models"
)

const oneLinerMaxLen = 180

// strategyPhrases maps classification labels to their display phrase.
// Unknown labels fall back to a generic prompt.
var strategyPhrases = map[string]string{
	"IRON_CONDOR":  "Range-bound, IV watch",
	"DEBIT_CALL":   "Bullish, defined risk",
	"DEBIT_PUT":    "Bearish, defined risk",
	"COVERED_CALL": "Income; upside capped",
	"NO_ACTION":    "Signal unclear",
}

// OneLinerComposer builds the bounded one-line explanation string with
// numbered citation markers. It is deterministic and carries no state.
type OneLinerComposer struct{}

func NewOneLinerComposer() *OneLinerComposer {
	return &OneLinerComposer{}
}

// Compose renders "<phrase>. Source: <publisher> —(<citations>)" from the
// classification and the first three ref slots. Citation numbering is dense
// over the slots that carry a URL: a filled slot after an empty one still
// gets the next number, not its positional index. Output is clamped to 180
// characters with a single trailing ellipsis when truncated.
func (c *OneLinerComposer) Compose(req *models.OneLinerRequest) *models.OneLiner {
	publisher := strings.TrimSpace(req.Publisher)
	if publisher == "" {
		publisher = "News"
	}
	phrase, ok := strategyPhrases[req.Class]
	if !ok {
		phrase = "Review setup"
	}

	suffix, numbers := citationSuffix(req.Refs)
	text := clampRunes(fmt.Sprintf("%s. Source: %s —%s", phrase, publisher, suffix), oneLinerMaxLen)

	return &models.OneLiner{Text: text, RefsNumbers: numbers}
}

// Fallback is the minimal local template used when the remote one-liner
// build fails. The request still succeeds with this string in place.
func (c *OneLinerComposer) Fallback(class string, confidence float64) *models.OneLiner {
	return &models.OneLiner{
		Text: fmt.Sprintf("%s · %d%% confidence", class, int(confidence*100)),
	}
}

func citationSuffix(refs []*models.Headline) (string, []models.RefNumber) {
	if len(refs) > models.RefSlots {
		refs = refs[:models.RefSlots]
	}
	var (
		b       strings.Builder
		numbers []models.RefNumber
	)
	n := 1
	for _, slot := range refs {
		if slot == nil || slot.URL == "" {
			continue
		}
		fmt.Fprintf(&b, "[%d]", n)
		numbers = append(numbers, models.RefNumber{N: n, URL: slot.URL})
		n++
	}
	if b.Len() == 0 {
		return "", nil
	}
	return "(" + b.String() + ")", numbers
}

func clampRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	head := strings.TrimRight(string(runes[:limit-3]), " ")
	return head + "…"
}
