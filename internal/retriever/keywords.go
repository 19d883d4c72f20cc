package retriever

import "strings"

// maxKeywords caps the tokens kept per query
const maxKeywords = 5

// stopWords are tokens that carry no retrieval signal, including the common
// query verbs ("tell", "show", "about") that would otherwise match nothing
// useful.
var stopWords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "myself": {}, "we": {}, "our": {}, "ours": {},
	"ourselves": {}, "you": {}, "your": {}, "yours": {}, "yourself": {},
	"yourselves": {}, "he": {}, "him": {}, "his": {}, "himself": {}, "she": {},
	"her": {}, "hers": {}, "herself": {}, "it": {}, "its": {}, "itself": {},
	"they": {}, "them": {}, "their": {}, "theirs": {}, "themselves": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "am": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "having": {}, "do": {}, "does": {}, "did": {}, "doing": {},
	"a": {}, "an": {}, "the": {}, "and": {}, "but": {}, "if": {}, "or": {},
	"because": {}, "as": {}, "until": {}, "while": {}, "of": {}, "at": {},
	"by": {}, "for": {}, "with": {}, "through": {}, "during": {},
	"before": {}, "after": {}, "above": {}, "below": {}, "up": {},
	"down": {}, "in": {}, "out": {}, "on": {}, "off": {}, "over": {},
	"under": {}, "again": {}, "further": {}, "then": {}, "once": {},
	"tell": {}, "show": {}, "about": {}, "know": {},
}

// extractKeywords lowercases and splits the query, strips trailing
// punctuation, drops stop words and tokens of length two or less, and keeps
// at most the first five remaining tokens in original order.
func extractKeywords(query string) []string {
	words := strings.Fields(strings.ToLower(query))

	keywords := make([]string, 0, maxKeywords)
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		word = strings.Trim(word, ".,!?;:")
		if len(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}
