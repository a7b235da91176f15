package pruning

import (
	"fmt"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"parquetscan/metadata"
)

// PredicateFromSQL lowers a SQL boolean expression (the text of a WHERE
// clause) into an EffectivePredicate over the file's schema. Only the
// parts of the expression that translate exactly are kept: a conjunction
// of per-column comparisons, BETWEEN, IN, and null tests. Everything
// else leaves its column unconstrained, so the resulting predicate is
// always safe to prune with: it can only be weaker than the SQL, never
// stronger.
func PredicateFromSQL(where string, schema *metadata.SchemaNode) (*EffectivePredicate, error) {
	result, err := pg_query.Parse("SELECT * FROM t WHERE " + where)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter expression: %w", err)
	}
	if len(result.Stmts) == 0 {
		return nil, fmt.Errorf("filter expression produced no statement")
	}
	selectStmt := result.Stmts[0].Stmt.GetSelectStmt()
	if selectStmt == nil || selectStmt.WhereClause == nil {
		return nil, fmt.Errorf("filter expression produced no WHERE clause")
	}

	resolver := newColumnResolver(schema)
	domains := map[string]*Domain{}
	collectConjuncts(selectStmt.WhereClause, resolver, domains)

	predicate := &EffectivePredicate{domains: domains}
	for _, domain := range domains {
		if domain.IsNone() {
			return NonePredicate(), nil
		}
	}
	return predicate, nil
}

// columnResolver maps SQL column references onto schema leaves
type columnResolver struct {
	byPath    map[string]metadata.LeafColumn
	bySegment map[string]metadata.LeafColumn
	ambiguous map[string]bool
}

func newColumnResolver(schema *metadata.SchemaNode) *columnResolver {
	r := &columnResolver{
		byPath:    map[string]metadata.LeafColumn{},
		bySegment: map[string]metadata.LeafColumn{},
		ambiguous: map[string]bool{},
	}
	for _, leaf := range schema.Leaves() {
		path := leaf.Path.String()
		r.byPath[path] = leaf
		segment := path[strings.LastIndexByte(path, '.')+1:]
		if _, seen := r.bySegment[segment]; seen {
			r.ambiguous[segment] = true
		} else {
			r.bySegment[segment] = leaf
		}
	}
	return r
}

func (r *columnResolver) resolve(name string) (metadata.LeafColumn, bool) {
	name = strings.ToLower(name)
	if leaf, ok := r.byPath[name]; ok {
		return leaf, true
	}
	if r.ambiguous[name] {
		return metadata.LeafColumn{}, false
	}
	leaf, ok := r.bySegment[name]
	return leaf, ok
}

// collectConjuncts walks an AND tree, turning each leaf comparison it
// understands into a domain and intersecting per column. OR, NOT and any
// unrecognized construct contribute nothing, leaving their columns
// unconstrained.
func collectConjuncts(node *pg_query.Node, resolver *columnResolver, domains map[string]*Domain) {
	if boolExpr := node.GetBoolExpr(); boolExpr != nil {
		if boolExpr.Boolop != pg_query.BoolExprType_AND_EXPR {
			return
		}
		for _, arg := range boolExpr.Args {
			collectConjuncts(arg, resolver, domains)
		}
		return
	}

	path, domain, ok := translateComparison(node, resolver)
	if !ok {
		return
	}
	if existing, present := domains[path]; present {
		domains[path] = existing.Intersect(domain)
	} else {
		domains[path] = domain
	}
}

func translateComparison(node *pg_query.Node, resolver *columnResolver) (string, *Domain, bool) {
	if nullTest := node.GetNullTest(); nullTest != nil {
		leaf, ok := resolveColumnRef(nullTest.Arg, resolver)
		if !ok {
			return "", nil, false
		}
		if nullTest.Nulltesttype == pg_query.NullTestType_IS_NOT_NULL {
			return leaf.Path.String(), AllValues(false), true
		}
		return leaf.Path.String(), OnlyNull(), true
	}

	aExpr := node.GetAExpr()
	if aExpr == nil {
		return "", nil, false
	}

	switch aExpr.Kind {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		return translateOperator(aExpr, resolver)
	case pg_query.A_Expr_Kind_AEXPR_BETWEEN:
		return translateBetween(aExpr, resolver)
	case pg_query.A_Expr_Kind_AEXPR_IN:
		return translateIn(aExpr, resolver)
	default:
		return "", nil, false
	}
}

func translateOperator(aExpr *pg_query.A_Expr, resolver *columnResolver) (string, *Domain, bool) {
	if len(aExpr.Name) == 0 {
		return "", nil, false
	}
	opNode := aExpr.Name[0].GetString_()
	if opNode == nil {
		return "", nil, false
	}
	op := opNode.Sval

	leaf, ok := resolveColumnRef(aExpr.Lexpr, resolver)
	constNode := aExpr.Rexpr
	if !ok {
		// Allow the flipped form: constant OP column.
		leaf, ok = resolveColumnRef(aExpr.Rexpr, resolver)
		if !ok {
			return "", nil, false
		}
		constNode = aExpr.Lexpr
		op = flipOperator(op)
	}

	value, ok := constantValue(constNode, leaf.Node)
	if !ok {
		return "", nil, false
	}

	var domain *Domain
	switch op {
	case "=":
		domain = SingleValue(value, false)
	case "<":
		domain = RangeDomain(Unbounded(), Below(value), false)
	case "<=":
		domain = RangeDomain(Unbounded(), AtMost(value), false)
	case ">":
		domain = RangeDomain(Above(value), Unbounded(), false)
	case ">=":
		domain = RangeDomain(AtLeast(value), Unbounded(), false)
	case "<>", "!=":
		domain = RangeDomain(Unbounded(), Below(value), false).
			Union(RangeDomain(Above(value), Unbounded(), false))
	default:
		return "", nil, false
	}
	return leaf.Path.String(), domain, true
}

func flipOperator(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	default:
		return op
	}
}

func translateBetween(aExpr *pg_query.A_Expr, resolver *columnResolver) (string, *Domain, bool) {
	leaf, ok := resolveColumnRef(aExpr.Lexpr, resolver)
	if !ok || aExpr.Rexpr == nil {
		return "", nil, false
	}
	list := aExpr.Rexpr.GetList()
	if list == nil || len(list.Items) < 2 {
		return "", nil, false
	}
	lo, okLo := constantValue(list.Items[0], leaf.Node)
	hi, okHi := constantValue(list.Items[1], leaf.Node)
	if !okLo || !okHi {
		return "", nil, false
	}
	return leaf.Path.String(), ClosedRange(lo, hi, false), true
}

func translateIn(aExpr *pg_query.A_Expr, resolver *columnResolver) (string, *Domain, bool) {
	// NOT IN parses as AEXPR_IN with operator <>, which this translation
	// cannot represent exactly; only the positive form is lowered.
	if len(aExpr.Name) > 0 {
		if opNode := aExpr.Name[0].GetString_(); opNode != nil && opNode.Sval != "=" {
			return "", nil, false
		}
	}
	leaf, ok := resolveColumnRef(aExpr.Lexpr, resolver)
	if !ok || aExpr.Rexpr == nil {
		return "", nil, false
	}
	list := aExpr.Rexpr.GetList()
	if list == nil || len(list.Items) == 0 {
		return "", nil, false
	}
	values := make([]Value, 0, len(list.Items))
	for _, item := range list.Items {
		value, ok := constantValue(item, leaf.Node)
		if !ok {
			return "", nil, false
		}
		values = append(values, value)
	}
	return leaf.Path.String(), UnionValues(values, false), true
}

func resolveColumnRef(node *pg_query.Node, resolver *columnResolver) (metadata.LeafColumn, bool) {
	if node == nil {
		return metadata.LeafColumn{}, false
	}
	columnRef := node.GetColumnRef()
	if columnRef == nil || len(columnRef.Fields) == 0 {
		return metadata.LeafColumn{}, false
	}
	segments := make([]string, 0, len(columnRef.Fields))
	for _, field := range columnRef.Fields {
		str := field.GetString_()
		if str == nil {
			return metadata.LeafColumn{}, false
		}
		segments = append(segments, str.Sval)
	}
	// Try the full dotted path first, then the bare column name; a
	// leading qualifier is usually a table alias, not a schema group.
	if leaf, ok := resolver.resolve(strings.Join(segments, ".")); ok {
		return leaf, true
	}
	return resolver.resolve(segments[len(segments)-1])
}

// constantValue coerces a SQL literal onto the column's value axis.
// Literals that cannot be represented exactly refuse to translate, which
// keeps the predicate weaker rather than wrong.
func constantValue(node *pg_query.Node, leaf *metadata.SchemaNode) (Value, bool) {
	aConst := node.GetAConst()
	if aConst == nil {
		return Value{}, false
	}

	switch leaf.Logical {
	case metadata.LogicalInt8, metadata.LogicalInt16, metadata.LogicalInt32, metadata.LogicalInt64, metadata.LogicalDate:
		if ival := aConst.GetIval(); ival != nil {
			return Int64Value(int64(ival.Ival)), true
		}
		if fval := aConst.GetFval(); fval != nil {
			if i, err := strconv.ParseInt(fval.Fval, 10, 64); err == nil {
				return Int64Value(i), true
			}
		}
	case metadata.LogicalFloat:
		if ival := aConst.GetIval(); ival != nil {
			return Float32Value(float32(ival.Ival)), true
		}
		if fval := aConst.GetFval(); fval != nil {
			if f, err := strconv.ParseFloat(fval.Fval, 32); err == nil {
				return Float32Value(float32(f)), true
			}
		}
	case metadata.LogicalDouble:
		if ival := aConst.GetIval(); ival != nil {
			return Float64Value(float64(ival.Ival)), true
		}
		if fval := aConst.GetFval(); fval != nil {
			if f, err := strconv.ParseFloat(fval.Fval, 64); err == nil {
				return Float64Value(f), true
			}
		}
	case metadata.LogicalString, metadata.LogicalEnum, metadata.LogicalJSON, metadata.LogicalBSON, metadata.LogicalBinary:
		if sval := aConst.GetSval(); sval != nil {
			return StringValue(sval.Sval), true
		}
	case metadata.LogicalBoolean:
		if bval := aConst.GetBoolval(); bval != nil {
			return BoolValue(bval.Boolval), true
		}
	}
	return Value{}, false
}
