package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/queryerr"
)

func fixedParser() *Parser {
	fixed := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	return &Parser{Now: func() time.Time { return fixed }}
}

func TestParse_Empty(t *testing.T) {
	_, err := fixedParser().Parse("   ")
	require.Error(t, err)
	var pe *queryerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, queryerr.ParseEmpty, pe.Kind)
}

func TestParse_StructuredBasic(t *testing.T) {
	q, err := fixedParser().Parse("memory%architecture%recent")
	require.NoError(t, err)
	assert.Equal(t, KindMemory, q.Kind)
	assert.Equal(t, []string{"architecture"}, q.SearchTerms)
	require.NotNil(t, q.Temporal)
	assert.Equal(t, TemporalRecent, q.Temporal.Kind)
}

func TestParse_StructuredUnknownKind(t *testing.T) {
	_, err := fixedParser().Parse("bogus%foo")
	require.Error(t, err)
	var pe *queryerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, queryerr.ParseUnknownKind, pe.Kind)
}

func TestParse_StructuredNoTerms(t *testing.T) {
	_, err := fixedParser().Parse("chat%yesterday")
	require.Error(t, err)
	var pe *queryerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, queryerr.ParseNoTerms, pe.Kind)
}

func TestParse_StructuredDedupPreservesOrder(t *testing.T) {
	q, err := fixedParser().Parse("memory%foo bar,foo baz")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar", "baz"}, q.SearchTerms)
}

func TestParse_TemporalInMiddlePartIsOrdinaryTerm(t *testing.T) {
	q, err := fixedParser().Parse("memory%recent topic%more")
	require.NoError(t, err)
	assert.Contains(t, q.SearchTerms, "recent")
	assert.Nil(t, q.Temporal)
}

func TestParse_NaturalLanguageDefaultsToMemory(t *testing.T) {
	q, err := fixedParser().Parse("garbage")
	require.NoError(t, err)
	assert.Equal(t, KindMemory, q.Kind)
	assert.Equal(t, []string{"garbage"}, q.SearchTerms)
}

func TestParse_NaturalLanguageChatContentType(t *testing.T) {
	q, err := fixedParser().Parse("show me the chat about deployment rollback yesterday")
	require.NoError(t, err)
	assert.Equal(t, KindChat, q.Kind)
	require.NotNil(t, q.Temporal)
	assert.Equal(t, TemporalYesterday, q.Temporal.Kind)
}

func TestFormatRoundTrip(t *testing.T) {
	p := fixedParser()
	q, err := p.Parse("memory%architecture%recent")
	require.NoError(t, err)

	formatted := Format(q)
	q2, err := p.Parse(formatted)
	require.NoError(t, err)

	assert.Equal(t, q.Kind, q2.Kind)
	assert.Equal(t, q.SearchTerms, q2.SearchTerms)
	assert.Equal(t, q.Temporal.Kind, q2.Temporal.Kind)
}

func TestResolve_Yesterday(t *testing.T) {
	now := time.Date(2026, 7, 30, 15, 0, 0, 0, time.UTC)
	tw := Resolve(TemporalYesterday, now)
	assert.Equal(t, time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC), tw.Start)
	assert.Equal(t, time.Date(2026, 7, 29, 23, 59, 59, 0, time.UTC), tw.End)
}
