package tokenizer

import "strings"

// irregularForms maps common irregular English inflections to their lemmas.
var irregularForms = map[string]string{
	"children": "child",
	"feet":     "foot",
	"geese":    "goose",
	"men":      "man",
	"mice":     "mouse",
	"people":   "person",
	"teeth":    "tooth",
	"women":    "woman",
	"better":   "good",
	"best":     "good",
	"worse":    "bad",
	"worst":    "bad",
}

// suffixRules are ordered lemmatization rules. The first matching suffix
// whose replacement leaves at least minStem characters wins.
var suffixRules = []struct {
	suffix      string
	replacement string
	minStem     int
}{
	{"sses", "ss", 2},
	{"ches", "ch", 2},
	{"shes", "sh", 2},
	{"xes", "x", 2},
	{"zes", "z", 2},
	{"ives", "ife", 2},
	{"ies", "y", 2},
	{"ying", "y", 2},
	{"ing", "", 3},
	{"ied", "y", 2},
	{"ed", "", 3},
	{"s", "", 3},
}

// lemmatize reduces a word to a dictionary form using irregular-form lookup
// followed by suffix rules. Unlike stemming it aims to keep real words:
// "cats" -> "cat", "studies" -> "study", "running" -> "runn" is avoided by
// only stripping when the remaining stem is long enough.
func lemmatize(word string) string {
	if lemma, ok := irregularForms[word]; ok {
		return lemma
	}
	for _, rule := range suffixRules {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		stem := word[:len(word)-len(rule.suffix)] + rule.replacement
		if len(stem) >= rule.minStem {
			// doubled final consonant from -ing/-ed stripping: "sitting" -> "sitt" -> "sit"
			if n := len(stem); n >= 2 && stem[n-1] == stem[n-2] && !isVowel(stem[n-1]) && stem[n-1] != 's' {
				stem = stem[:n-1]
			}
			return stem
		}
	}
	return word
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
