package ingest

import (
	"regexp"
	"strings"
)

// Word classes assigned by Tag.
const (
	TagNumber      = "Number"
	TagSymbol      = "Symbol"
	TagPronoun     = "Pronoun"
	TagArticle     = "Article"
	TagConjunction = "Conjunction"
	TagVerb        = "Verb"
	TagPreposition = "Preposition"
	TagNoun        = "Noun"
)

var tokenRe = regexp.MustCompile(`\w+|[[:punct:]]`)

var (
	numberRe = regexp.MustCompile(`^\d+$`)
	symbolRe = regexp.MustCompile(`^[[:punct:]]$`)
	// Crude inflection check; anything else falls through to Noun.
	inflectedRe = regexp.MustCompile(`(?i)(ing|ed|s)$`)
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var (
	pronouns     = wordSet("he", "she", "it", "they", "we", "you", "i")
	articles     = wordSet("a", "an", "the")
	conjunctions = wordSet("and", "but", "or", "nor", "for", "so", "yet")
	auxVerbs     = wordSet("is", "are", "was", "were", "be", "being", "been", "have", "has", "had",
		"do", "does", "did", "will", "would", "shall", "should", "may", "might", "must", "can", "could")
	prepositions = wordSet("to", "from", "with", "at", "by", "in", "on", "of", "about", "as", "into",
		"like", "through", "after", "over", "between", "out", "against", "during", "without",
		"before", "under", "around", "among")
)

// Tokenize splits text into words and single punctuation marks.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// Tag classifies a token with a heuristic word class. It is not a real
// part-of-speech tagger.
func Tag(token string) string {
	switch {
	case numberRe.MatchString(token):
		return TagNumber
	case symbolRe.MatchString(token):
		return TagSymbol
	}
	return wordClass(token)
}

func wordClass(word string) string {
	w := strings.ToLower(word)
	switch {
	case pronouns[w]:
		return TagPronoun
	case articles[w]:
		return TagArticle
	// "for" is listed as both; conjunction wins.
	case conjunctions[w]:
		return TagConjunction
	case auxVerbs[w]:
		return TagVerb
	case prepositions[w]:
		return TagPreposition
	case inflectedRe.MatchString(w):
		return TagVerb
	}
	return TagNoun
}

func isSentenceEnd(token string) bool {
	return token == "." || token == "!" || token == "?"
}

// sentenceComponent maps a token to its role in a sentence structure label.
// Articles and punctuation contribute nothing.
func sentenceComponent(token string) string {
	switch Tag(token) {
	case TagPronoun, TagNoun:
		return "Subject"
	case TagVerb:
		return "Verb"
	case TagPreposition:
		return "Adjunct"
	case TagArticle, TagSymbol:
		return ""
	}
	return "Object"
}

// SentenceStructure builds a label like "Subject + Verb + Object" from the
// first occurrence of each component in sentence.
func SentenceStructure(sentence []string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, tok := range sentence {
		c := sentenceComponent(tok)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		parts = append(parts, c)
	}
	return strings.Join(parts, " + ")
}
