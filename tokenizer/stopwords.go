package tokenizer

// defaultStopwords is the default English stopword set, applied after
// lowercasing and before stemming.
var defaultStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "can": {}, "do": {}, "each": {},
	"for": {}, "from": {}, "had": {}, "has": {}, "have": {}, "he": {},
	"her": {}, "his": {}, "if": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "no": {}, "not": {}, "of": {}, "on": {}, "or": {},
	"she": {}, "so": {}, "that": {}, "the": {}, "their": {}, "they": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "who": {}, "will": {}, "with": {}, "you": {},
}

// DefaultStopwords returns a copy of the default English stopword list.
func DefaultStopwords() []string {
	out := make([]string, 0, len(defaultStopwords))
	for w := range defaultStopwords {
		out = append(out, w)
	}
	return out
}
