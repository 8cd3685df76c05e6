package risk

import "strings"

// vocabulary is the fixed list of distress-related terms scanned for in
// conversation transcripts. Matching is case-insensitive substring
// containment.
var vocabulary = []string{"stress", "anxiety", "depression", "suicide", "sad", "hopeless"}

// Vocabulary returns a copy of the keyword vocabulary.
func Vocabulary() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Scan checks the text for each vocabulary term and returns HighRisk
// together with the matched terms when at least one is present, LowRisk
// with an empty slice otherwise. Matches are reported in vocabulary order,
// deduplicated. Blank input is low risk.
func Scan(text string) (Label, []string) {
	lowered := strings.ToLower(text)

	matched := []string{}
	for _, term := range vocabulary {
		if strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}

	if len(matched) > 0 {
		return HighRisk, matched
	}
	return LowRisk, matched
}
