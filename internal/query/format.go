package query

import "strings"

// Format renders a SemanticQuery back into the structured grammar, for the
// round-trip law Parse(Format(q)) = q. Only expressible on the structured
// subset: a temporal window whose Kind is not CUSTOM serializes back to its
// keyword; a CUSTOM window cannot round-trip and is omitted.
func Format(q *SemanticQuery) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(q.Kind)))
	b.WriteByte('%')
	b.WriteString(strings.Join(q.SearchTerms, " "))

	if q.Temporal != nil {
		if kw := temporalToKeyword(q.Temporal.Kind); kw != "" {
			b.WriteByte('%')
			b.WriteString(kw)
		}
	}
	return b.String()
}

func temporalToKeyword(kind TemporalKind) string {
	switch kind {
	case TemporalRecent:
		return "recent"
	case TemporalToday:
		return "today"
	case TemporalYesterday:
		return "yesterday"
	case TemporalLastWeek:
		return "last_week"
	case TemporalLastMonth:
		return "last_month"
	default:
		return ""
	}
}
