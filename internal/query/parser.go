package query

import (
	"strings"
	"time"

	"github.com/aman-cerp/fedq/internal/queryerr"
)

// Parser turns raw caller text into a SemanticQuery. It holds no state
// beyond its configuration and is safe for concurrent use.
type Parser struct {
	// Now returns the current time; overridable in tests. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// NewParser returns a Parser using the real clock.
func NewParser() *Parser {
	return &Parser{Now: time.Now}
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Parse implements Parse(raw string) -> SemanticQuery | ParseError.
func (p *Parser) Parse(raw string) (*SemanticQuery, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, queryerr.NewParseError(queryerr.ParseEmpty, "empty query", raw)
	}

	if strings.Contains(trimmed, "%") {
		return p.parseStructured(raw, trimmed)
	}
	return p.parseNatural(raw, trimmed)
}

func (p *Parser) parseStructured(raw, trimmed string) (*SemanticQuery, error) {
	parts := strings.Split(trimmed, "%")
	kindToken := strings.TrimSpace(parts[0])
	kind, ok := ParseKind(kindToken)
	if !ok {
		return nil, queryerr.NewParseError(queryerr.ParseUnknownKind, "unrecognized query kind: "+kindToken, raw)
	}

	body := parts[1:]
	var temporal *Temporal
	var terms []string
	seen := make(map[string]bool)

	for i, part := range body {
		isTrailer := i == len(body)-1
		tokens := tokenizeStructured(part)

		if isTrailer && len(tokens) == 1 {
			if tk, ok := temporalKeyword[normalizeToken(tokens[0])]; ok {
				t := Resolve(tk, p.now())
				temporal = &t
				continue
			}
		}

		for _, tok := range tokens {
			if tok == "" || seen[tok] {
				continue
			}
			seen[tok] = true
			terms = append(terms, tok)
		}
	}

	if len(terms) == 0 {
		return nil, queryerr.NewParseError(queryerr.ParseNoTerms, "no search terms after parsing", raw)
	}

	return &SemanticQuery{
		Kind:         kind,
		SearchTerms:  terms,
		Temporal:     temporal,
		TopicFilters: nil,
		TargetStores: proposeStores(kind, terms, ""),
		Original:     raw,
	}, nil
}

// tokenizeStructured splits a grammar part on whitespace and commas,
// trimming empty results.
func tokenizeStructured(part string) []string {
	fields := strings.FieldsFunc(part, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// proposeStores computes the parser's store-selection hint. The
// Planner may add, remove, or reorder these.
func proposeStores(kind Kind, terms []string, contentType string) []StoreKind {
	var stores []StoreKind
	switch kind {
	case KindChat:
		stores = []StoreKind{StoreRelational, StoreKV}
	case KindDocument:
		stores = []StoreKind{StoreFilesystem, StoreVector, StoreRelational}
	default: // MEMORY and unrecognized content types default here
		stores = []StoreKind{StoreVector, StoreRelational}
	}

	if contentType == "relationship" || hasRelationalKeyword(terms) {
		stores = append(stores, StoreGraph)
	}
	return stores
}

func hasRelationalKeyword(terms []string) bool {
	for _, t := range terms {
		lt := strings.ToLower(t)
		if lt == "related" || lt == "connected" || lt == "relationship" || lt == "relationships" {
			return true
		}
	}
	return false
}
