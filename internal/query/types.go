// Package query turns a raw caller-supplied string into a SemanticQuery,
// either through the structured kind%terms%trailer grammar or, failing
// that, a lightweight natural-language fallback.
package query

import "time"

// Kind selects which backing-store priority table and default store set
// the planner uses.
type Kind string

const (
	KindMemory   Kind = "MEMORY"
	KindChat     Kind = "CHAT"
	KindDocument Kind = "DOCUMENT"
)

// ParseKind maps a case-insensitive grammar token to a Kind. ok is false
// for anything not recognized.
func ParseKind(token string) (Kind, bool) {
	switch normalizeToken(token) {
	case "memory":
		return KindMemory, true
	case "chat":
		return KindChat, true
	case "document":
		return KindDocument, true
	default:
		return "", false
	}
}

// StoreKind identifies one of the four backing store kinds plus the
// optional filesystem store. Defined here (not in package store) so the
// Parser can propose target stores without importing the store registry.
type StoreKind string

const (
	StoreRelational StoreKind = "RELATIONAL"
	StoreVector     StoreKind = "VECTOR"
	StoreGraph      StoreKind = "GRAPH"
	StoreKV         StoreKind = "KV"
	StoreFilesystem StoreKind = "FILESYSTEM"
)

// TemporalKind names the recognized relative-time keywords.
type TemporalKind string

const (
	TemporalRecent     TemporalKind = "RECENT"
	TemporalToday      TemporalKind = "TODAY"
	TemporalYesterday  TemporalKind = "YESTERDAY"
	TemporalLastWeek   TemporalKind = "LAST_WEEK"
	TemporalLastMonth  TemporalKind = "LAST_MONTH"
	TemporalCustom     TemporalKind = "CUSTOM"
)

// Temporal is a resolved (start, end) window attached to a query.
type Temporal struct {
	Kind  TemporalKind
	Start time.Time
	End   time.Time
}

// Resolve computes the (start, end) window for a temporal keyword as of
// now. All times are UTC.
func Resolve(kind TemporalKind, now time.Time) Temporal {
	now = now.UTC()
	switch kind {
	case TemporalRecent:
		return Temporal{Kind: kind, Start: now.Add(-24 * time.Hour), End: now}
	case TemporalToday:
		return Temporal{Kind: kind, Start: midnight(now), End: now}
	case TemporalYesterday:
		y := midnight(now.Add(-24 * time.Hour))
		return Temporal{Kind: kind, Start: y, End: y.Add(23*time.Hour + 59*time.Minute + 59*time.Second)}
	case TemporalLastWeek:
		return Temporal{Kind: kind, Start: now.Add(-7 * 24 * time.Hour), End: now}
	case TemporalLastMonth:
		return Temporal{Kind: kind, Start: now.Add(-30 * 24 * time.Hour), End: now}
	default:
		return Temporal{Kind: TemporalCustom, Start: now, End: now}
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// temporalKeyword maps the caller-facing keyword spelling to a TemporalKind.
// Defined once and reused by both the structured and NLP parse paths.
var temporalKeyword = map[string]TemporalKind{
	"recent":      TemporalRecent,
	"today":       TemporalToday,
	"yesterday":   TemporalYesterday,
	"last_week":   TemporalLastWeek,
	"lastweek":    TemporalLastWeek,
	"last_month":  TemporalLastMonth,
	"lastmonth":   TemporalLastMonth,
}

// SemanticQuery is the Parser's sole output. It is immutable once
// constructed; downstream stages never mutate it.
type SemanticQuery struct {
	Kind         Kind
	SearchTerms  []string
	Temporal     *Temporal
	TopicFilters []string
	TargetStores []StoreKind
	Original     string
}
