package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/fedgate/admission/logger"
)

func parseQuery(t *testing.T, query string) *ast.QueryDocument {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Name: "test.graphql", Input: query})
	require.NoError(t, err)
	return doc
}

func newAnalyzer() *Analyzer {
	return NewAnalyzer(Config{Budget: 1000}, logger.NewNopLogger())
}

func TestScore_PaginatedListArithmetic(t *testing.T) {
	// items: base 1 + argument 0.5 + pagination min(50,100)*0.1 = 6.5
	// nested id+name = 2, x10 list multiplier = 20
	// depth penalties: 2*1 + 2*2 = 6
	// total 32.5, rounded up to 33
	doc := parseQuery(t, `{ items(first: 50) { id name } }`)

	res := newAnalyzer().Score(doc, nil)

	assert.Equal(t, 33, res.Score)
	assert.Equal(t, 2, res.Depth)
	assert.ElementsMatch(t, []string{"id", "items", "name"}, res.Fields)
	assert.False(t, res.Capped)
}

func TestScore_PaginationViaVariable(t *testing.T) {
	doc := parseQuery(t, `query Q($n: Int) { items(first: $n) { id } }`)
	a := newAnalyzer()

	small := a.Score(doc, map[string]interface{}{"n": 10})
	large := a.Score(doc, map[string]interface{}{"n": 90})
	huge := a.Score(doc, map[string]interface{}{"n": 100000})

	assert.Less(t, small.Score, large.Score,
		"a larger page size must never lower the score")
	assert.Equal(t, a.Score(doc, map[string]interface{}{"n": 100}).Score, huge.Score,
		"pagination influence is capped at 100")

	// a non-numeric variable contributes only the flat argument cost
	junk := a.Score(doc, map[string]interface{}{"n": "lots"})
	assert.Less(t, junk.Score, small.Score)
}

func TestScore_MetaFieldsAreFree(t *testing.T) {
	withMeta := parseQuery(t, `{ __typename user { id } }`)
	without := parseQuery(t, `{ user { id } }`)

	a := newAnalyzer()
	assert.Equal(t, a.Score(without, nil).Score, a.Score(withMeta, nil).Score)
}

func TestScore_SingularSFieldsNotListShaped(t *testing.T) {
	singular := parseQuery(t, `{ status { code } }`)
	reference := parseQuery(t, `{ state { code } }`)
	plural := parseQuery(t, `{ orders { code } }`)

	a := newAnalyzer()
	assert.Equal(t, a.Score(reference, nil).Score, a.Score(singular, nil).Score,
		"status names one object, not a list")
	assert.Greater(t, a.Score(plural, nil).Score, a.Score(singular, nil).Score)
}

func TestScore_ExpensiveFieldMultiplier(t *testing.T) {
	plain := parseQuery(t, `{ entries { id } }`)
	expensive := parseQuery(t, `{ searchEntries { id } }`)

	a := newAnalyzer()
	assert.Greater(t, a.Score(expensive, nil).Score, a.Score(plain, nil).Score)
}

func TestScore_FragmentSubstitutionParity(t *testing.T) {
	literal := parseQuery(t, `{ user { id name } }`)
	spread := parseQuery(t, `
		{ user { ...A } }
		fragment A on User { id name }
	`)
	inline := parseQuery(t, `{ user { ... on User { id name } } }`)

	a := newAnalyzer()
	want := a.Score(literal, nil)
	// user 1 + (id 1 + name 1) + depth penalties 2 + 4
	assert.Equal(t, 9, want.Score)

	got := a.Score(spread, nil)
	assert.Equal(t, want.Score, got.Score,
		"a fragment spread must score like the inlined query")
	assert.Equal(t, want.Depth, got.Depth)

	got = a.Score(inline, nil)
	assert.Equal(t, want.Score, got.Score,
		"an inline fragment must score like its contained selections")
	assert.Equal(t, want.Depth, got.Depth)
}

func TestScore_FragmentCycleIsFinite(t *testing.T) {
	doc := parseQuery(t, `
		query { user { ...A } }
		fragment A on User { id ...B }
		fragment B on User { name ...A }
	`)

	res := newAnalyzer().Score(doc, nil)

	assert.Positive(t, res.Score)
	assert.GreaterOrEqual(t, res.Depth, 2)
}

func TestScore_UnresolvableFragmentCostsNothing(t *testing.T) {
	broken := parseQuery(t, `{ user { id ...Missing } }`)
	intact := parseQuery(t, `{ user { id } }`)

	a := newAnalyzer()
	assert.Equal(t, a.Score(intact, nil).Score, a.Score(broken, nil).Score)
}

func TestScore_ComplexityMonotonicity(t *testing.T) {
	narrow := parseQuery(t, `{ user { id } }`)
	wide := parseQuery(t, `{ user { id email } }`)
	deep := parseQuery(t, `{ user { id profile { bio } } }`)

	a := newAnalyzer()
	base := a.Score(narrow, nil).Score
	assert.Greater(t, a.Score(wide, nil).Score, base,
		"adding a field must never decrease the score")
	assert.Greater(t, a.Score(deep, nil).Score, base,
		"adding a nested field must never decrease the score")
}

func TestScore_DepthCapBoundsTraversal(t *testing.T) {
	doc := parseQuery(t, `{ a { b { c { d { e { f { g { h } } } } } } } }`)

	a := NewAnalyzer(Config{MaxDepth: 3}, logger.NewNopLogger())
	res := a.Score(doc, nil)

	assert.True(t, res.Capped)
	assert.Equal(t, 3, res.Depth)
}

func TestScore_FragmentExpansionCap(t *testing.T) {
	doc := parseQuery(t, `
		{ u1 { ...F } u2 { ...F } u3 { ...F } }
		fragment F on User { id }
	`)

	a := NewAnalyzer(Config{MaxFragmentExpansions: 2}, logger.NewNopLogger())
	res := a.Score(doc, nil)

	assert.True(t, res.Capped)
}

func TestScore_EmptyDocument(t *testing.T) {
	res := newAnalyzer().Score(nil, nil)
	assert.Zero(t, res.Score)
	assert.Zero(t, res.Depth)
	assert.Empty(t, res.Fields)
}

func TestScore_InlineFragment(t *testing.T) {
	doc := parseQuery(t, `{ node { ... on User { id } } }`)

	res := newAnalyzer().Score(doc, nil)
	assert.Contains(t, res.Fields, "id")
	assert.Equal(t, 2, res.Depth)
}
