package query

import (
	"regexp"
	"strings"

	"github.com/aman-cerp/fedq/internal/queryerr"
)

// intent is extracted from natural-language input; it has no
// representation on SemanticQuery and does not affect store selection.
type intent string

const (
	intentSearch   intent = "search"
	intentRetrieve intent = "retrieve"
	intentShow     intent = "show"
	intentAnalyze  intent = "analyze"
	intentCount    intent = "count"
)

var intentKeywords = map[string]intent{
	"search": intentSearch, "find": intentSearch, "look": intentSearch,
	"retrieve": intentRetrieve, "get": intentRetrieve, "fetch": intentRetrieve,
	"show": intentShow, "display": intentShow, "list": intentShow,
	"analyze": intentAnalyze, "analyse": intentAnalyze, "explain": intentAnalyze,
	"count": intentCount, "how many": intentCount,
}

var contentTypeKeywords = map[string]string{
	"chat": "chat", "conversation": "chat", "message": "chat",
	"memory": "memory", "memories": "memory", "remember": "memory",
	"document": "document", "doc": "document", "file": "document",
	"relationship": "relationship", "related": "relationship", "connection": "relationship", "connected": "relationship",
}

var contractions = map[string]string{
	"don't":   "do not",
	"can't":   "cannot",
	"won't":   "will not",
	"it's":    "it is",
	"what's":  "what is",
	"i'm":     "i am",
	"didn't":  "did not",
	"isn't":   "is not",
	"aren't":  "are not",
	"wasn't":  "was not",
	"weren't": "were not",
}

var nlpStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "to": true, "in": true,
	"on": true, "at": true, "for": true, "with": true, "and": true, "or": true,
	"but": true, "do": true, "does": true, "did": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "me": true, "my": true,
	"about": true, "all": true, "any": true,
}

var camelOrSnake = regexp.MustCompile(`[a-z0-9]+[A-Z]|_`)
var quotedTerm = regexp.MustCompile(`"([^"]+)"`)

func expandContractions(s string) string {
	for from, to := range contractions {
		s = strings.ReplaceAll(s, from, to)
	}
	return s
}

func extractIntent(lower string) intent {
	for kw, in := range intentKeywords {
		if strings.Contains(lower, kw) {
			return in
		}
	}
	return intentRetrieve
}

func extractContentType(lower string) string {
	for kw, ct := range contentTypeKeywords {
		if strings.Contains(lower, kw) {
			return ct
		}
	}
	return ""
}

func contentTypeToKind(ct string) Kind {
	switch ct {
	case "chat":
		return KindChat
	case "document":
		return KindDocument
	default:
		return KindMemory
	}
}

// parseNatural implements the natural-language fallback.
func (p *Parser) parseNatural(raw, trimmed string) (*SemanticQuery, error) {
	quoted := quotedTerm.FindAllStringSubmatch(trimmed, -1)

	lower := strings.ToLower(trimmed)
	lower = expandContractions(lower)

	_ = extractIntent(lower) // result unused: store selection below ignores intent

	contentType := extractContentType(lower)
	kind := contentTypeToKind(contentType)

	var temporal *Temporal
	for keyword, tk := range temporalKeyword {
		if strings.Contains(lower, strings.ReplaceAll(keyword, "_", " ")) || strings.Contains(lower, keyword) {
			t := Resolve(tk, p.now())
			temporal = &t
			break
		}
	}

	seen := make(map[string]bool)
	var terms []string
	addTerm := func(tok string) {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		terms = append(terms, tok)
	}

	for _, m := range quoted {
		addTerm(m[1])
	}

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	for _, f := range fields {
		if nlpStopWords[f] {
			continue
		}
		if len(f) >= 3 || camelOrSnake.MatchString(f) {
			addTerm(f)
		}
	}

	if len(terms) == 0 {
		return nil, queryerr.NewParseError(queryerr.ParseNoTerms, "no search terms extracted from natural-language query", raw)
	}

	return &SemanticQuery{
		Kind:         kind,
		SearchTerms:  terms,
		Temporal:     temporal,
		TopicFilters: nil,
		TargetStores: proposeStores(kind, terms, contentType),
		Original:     raw,
	}, nil
}
