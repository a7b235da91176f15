package pruning

import (
	"parquetscan/common"
	"parquetscan/metadata"
)

// EffectivePredicate is a conjunction of per-column domains: a row can
// match only if every constrained column takes a value inside its
// domain. The none sentinel marks a predicate that is unsatisfiable
// regardless of any column. Predicates are immutable once built.
type EffectivePredicate struct {
	none    bool
	domains map[string]*Domain
}

// AllPredicate returns the predicate that constrains nothing
func AllPredicate() *EffectivePredicate {
	return &EffectivePredicate{domains: map[string]*Domain{}}
}

// NonePredicate returns the unsatisfiable predicate
func NonePredicate() *EffectivePredicate {
	return &EffectivePredicate{none: true}
}

// NewPredicate builds a predicate from per-column domains. A column
// whose domain is unsatisfiable collapses the whole conjunction to the
// none sentinel.
func NewPredicate(domains map[metadata.ColumnPath]*Domain) *EffectivePredicate {
	p := &EffectivePredicate{domains: make(map[string]*Domain, len(domains))}
	for path, domain := range domains {
		if domain.IsNone() {
			return NonePredicate()
		}
		p.domains[path.String()] = domain
	}
	return p
}

// IsNone reports whether the predicate is unsatisfiable
func (p *EffectivePredicate) IsNone() bool {
	return p.none
}

// ColumnDomain returns the domain constraining the given column, or nil
// when the column is unconstrained
func (p *EffectivePredicate) ColumnDomain(path metadata.ColumnPath) *Domain {
	return p.domains[path.String()]
}

// ColumnStatistics is one column's contribution to a row-group match
// decision
type ColumnStatistics struct {
	Path       metadata.ColumnPath
	Logical    metadata.LogicalType
	Statistics *metadata.Statistics // nil when the file has none
}

// MayMatch decides whether a row group described by the given per-column
// statistics could contain a row satisfying the predicate. False is
// authoritative: no row in the group can match. True only means the
// group cannot be excluded. With strict set, corrupted statistics
// surface as an error instead of silently disabling pruning for their
// column.
func (p *EffectivePredicate) MayMatch(rowCount int64, columns []ColumnStatistics, fileID string, strict bool) (bool, error) {
	if rowCount == 0 {
		return false, nil
	}
	if p.none {
		return false, nil
	}

	tracer := common.GetTracer()
	for _, column := range columns {
		domain := p.domains[column.Path.String()]
		if domain == nil {
			continue
		}
		if column.Statistics == nil {
			// Nothing to prune on for this column; assume it matches.
			continue
		}
		statsDomain, err := DomainFromStatistics(column.Logical, rowCount, column.Statistics, fileID, column.Path.String(), strict)
		if err != nil {
			return false, err
		}
		if statsDomain.Intersect(domain).IsNone() {
			tracer.Debug(common.TraceComponentPruning, "Row group excluded by column statistics", common.TraceContext(
				"file", fileID,
				"column", column.Path.String(),
			))
			return false, nil
		}
	}
	return true, nil
}

// MayMatchRowGroup applies MayMatch to a parsed row group record
func (p *EffectivePredicate) MayMatchRowGroup(rowGroup *metadata.RowGroupMetadata, fileID string, strict bool) (bool, error) {
	columns := make([]ColumnStatistics, len(rowGroup.Columns))
	for i := range rowGroup.Columns {
		chunk := &rowGroup.Columns[i]
		columns[i] = ColumnStatistics{
			Path:       chunk.Path,
			Logical:    chunk.Node.Logical,
			Statistics: chunk.Statistics,
		}
	}
	return p.MayMatch(rowGroup.NumRows, columns, fileID, strict)
}

// MayMatchDictionary decides whether a column whose chunk is fully
// dictionary-encoded could hold a value satisfying the predicate. The
// dictionary yields an exact value set, so a false here is authoritative
// even when min/max statistics would have admitted the predicate.
func (p *EffectivePredicate) MayMatchDictionary(descriptor *DictionaryDescriptor) bool {
	if p.none {
		return false
	}
	domain := p.domains[descriptor.Path.String()]
	if domain == nil {
		return true
	}
	return !DomainFromDictionary(descriptor).Intersect(domain).IsNone()
}
