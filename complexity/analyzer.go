// Package complexity statically estimates the execution cost of a parsed
// GraphQL document before any resolver runs. The analyzer is pure CPU: no
// I/O, no shared state, bounded by explicit recursion and fragment caps so
// adversarial documents cannot stall the hot path.
package complexity

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/fedgate/admission/logger"
)

const (
	fieldBaseCost       = 1.0
	argumentCost        = 0.5
	paginationCostUnit  = 0.1
	paginationCap       = 100
	depthPenaltyFactor  = 2.0
	listMultiplier      = 10.0
	expensiveMultiplier = 5.0
)

// Result is the outcome of scoring one document. Request-scoped, never
// persisted.
type Result struct {
	// Score is the ceiling of the accumulated cost.
	Score int

	// Depth is the maximum nesting level reached on any branch.
	Depth int

	// Fields is the deduplicated, sorted set of field names visited, for
	// diagnostics only.
	Fields []string

	// Capped is true when a CPU bound (depth or fragment expansions) cut
	// the traversal short; the score is then a lower bound.
	Capped bool
}

// Analyzer scores documents against a configured cost model.
type Analyzer struct {
	config Config
	logger *logger.CtxZapLogger
}

// NewAnalyzer creates an analyzer; zero-value config fields get defaults.
func NewAnalyzer(cfg Config, log *logger.CtxZapLogger) *Analyzer {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetLogger("complexity")
	}
	return &Analyzer{config: cfg, logger: log}
}

// Budget returns the configured score ceiling.
func (a *Analyzer) Budget() int {
	return a.config.Budget
}

// walkState carries traversal accumulators. The fragment visited-set is
// NOT in here: it is passed by value down the recursion so sibling
// branches may legally spread the same fragment.
type walkState struct {
	doc        *ast.QueryDocument
	vars       map[string]interface{}
	depthCost  float64
	maxDepth   int
	expansions int
	capped     bool
	fields     map[string]struct{}
}

// Score walks every operation of the document and returns the combined
// complexity. Malformed pieces (unresolvable fragments, non-numeric
// pagination variables) degrade to zero additional cost instead of
// failing, so one bad fragment cannot take down an otherwise fine query.
func (a *Analyzer) Score(doc *ast.QueryDocument, vars map[string]interface{}) *Result {
	state := &walkState{
		doc:    doc,
		vars:   vars,
		fields: make(map[string]struct{}),
	}

	var fieldCost float64
	if doc != nil {
		for _, op := range doc.Operations {
			fieldCost += a.scoreSelectionSet(op.SelectionSet, 1, fragmentSet{}, state)
		}
	}

	total := fieldCost + state.depthCost

	fields := make([]string, 0, len(state.fields))
	for name := range state.fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	return &Result{
		Score:  int(math.Ceil(total)),
		Depth:  state.maxDepth,
		Fields: fields,
		Capped: state.capped,
	}
}

// fragmentSet is the visited-fragment set, copied on extension so each
// recursive branch owns its own view.
type fragmentSet map[string]struct{}

func (s fragmentSet) with(name string) fragmentSet {
	next := make(fragmentSet, len(s)+1)
	for k := range s {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return next
}

// scoreSelectionSet returns the field-cost sum of one selection set at
// the given depth. The per-level depth penalty accumulates on the state
// separately so list multipliers never amplify it.
func (a *Analyzer) scoreSelectionSet(set ast.SelectionSet, depth int, visited fragmentSet, state *walkState) float64 {
	if len(set) == 0 {
		return 0
	}
	if depth > a.config.MaxDepth {
		state.capped = true
		return 0
	}
	if depth > state.maxDepth {
		state.maxDepth = depth
	}

	cost := a.scoreSelections(set, depth, visited, state)
	state.depthCost += depthPenaltyFactor * float64(depth)
	return cost
}

// scoreSelections sums the members of one selection set. Fragment
// contents are substituted into the enclosing set through this path, so
// a spread scores exactly like the literally inlined query: the per-set
// depth penalty is charged once, by scoreSelectionSet, never again per
// fragment.
func (a *Analyzer) scoreSelections(set ast.SelectionSet, depth int, visited fragmentSet, state *walkState) float64 {
	var cost float64
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			cost += a.scoreField(s, depth, visited, state)
		case *ast.FragmentSpread:
			cost += a.scoreFragmentSpread(s, depth, visited, state)
		case *ast.InlineFragment:
			cost += a.scoreSelections(s.SelectionSet, depth, visited, state)
		}
	}
	return cost
}

func (a *Analyzer) scoreField(field *ast.Field, depth int, visited fragmentSet, state *walkState) float64 {
	state.fields[field.Name] = struct{}{}

	// introspection and other meta fields are free
	if strings.HasPrefix(field.Name, "__") {
		return 0
	}

	cost := fieldBaseCost
	for _, arg := range field.Arguments {
		cost += argumentCost
		if a.isPaginationArgument(arg.Name) {
			if size, ok := a.resolveNumeric(arg.Value, state.vars); ok && size > 0 {
				cost += math.Min(size, paginationCap) * paginationCostUnit
			}
		}
	}

	if len(field.SelectionSet) == 0 {
		return cost
	}

	nested := a.scoreSelectionSet(field.SelectionSet, depth+1, visited, state)
	multiplier := 1.0
	if isListShaped(field.Name) {
		multiplier *= listMultiplier
	}
	if a.isExpensiveField(field.Name) {
		multiplier *= expensiveMultiplier
	}
	return cost + nested*multiplier
}

// scoreFragmentSpread inlines the named fragment. Repeats on the current
// branch (cycles) and unresolvable names contribute zero cost; both are
// diagnostic signals, not request failures.
func (a *Analyzer) scoreFragmentSpread(spread *ast.FragmentSpread, depth int, visited fragmentSet, state *walkState) float64 {
	if _, seen := visited[spread.Name]; seen {
		return 0
	}
	if state.expansions >= a.config.MaxFragmentExpansions {
		state.capped = true
		return 0
	}

	fragment := state.doc.Fragments.ForName(spread.Name)
	if fragment == nil {
		a.logger.Debug("unresolvable fragment spread scored as zero",
			zap.String("fragment", spread.Name))
		return 0
	}

	state.expansions++
	return a.scoreSelections(fragment.SelectionSet, depth, visited.with(spread.Name), state)
}

func (a *Analyzer) isPaginationArgument(name string) bool {
	for _, candidate := range a.config.PaginationArguments {
		if name == candidate {
			return true
		}
	}
	return false
}

func (a *Analyzer) isExpensiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range a.config.ExpensiveFields {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// singularSFields are common field names that end in "s" but name a
// single object, exempted from the plural heuristic.
var singularSFields = map[string]bool{
	"status":   true,
	"settings": true,
	"news":     true,
	"analysis": true,
	"alias":    true,
}

// isListShaped is the fan-out heuristic: plural-looking names and the
// common relay-style container suffixes.
func isListShaped(name string) bool {
	if strings.HasSuffix(name, "Connection") || strings.HasSuffix(name, "List") || strings.HasSuffix(name, "Edges") {
		return true
	}
	if singularSFields[strings.ToLower(name)] {
		return false
	}
	return strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss")
}

// resolveNumeric evaluates an argument value to a number, substituting
// bound variables. Anything non-numeric reports !ok and costs only the
// flat per-argument fee.
func (a *Analyzer) resolveNumeric(value *ast.Value, vars map[string]interface{}) (float64, bool) {
	if value == nil {
		return 0, false
	}

	switch value.Kind {
	case ast.IntValue, ast.FloatValue:
		n, err := strconv.ParseFloat(value.Raw, 64)
		return n, err == nil
	case ast.Variable:
		return coerceNumeric(vars[value.Raw])
	default:
		return 0, false
	}
}

func coerceNumeric(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
