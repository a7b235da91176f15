package metadata

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go/format"
)

// Repetition is the repetition mode of a schema node
type Repetition int

const (
	RepetitionRequired Repetition = iota
	RepetitionOptional
	RepetitionRepeated
)

// String returns the string representation of Repetition
func (r Repetition) String() string {
	switch r {
	case RepetitionRequired:
		return "REQUIRED"
	case RepetitionOptional:
		return "OPTIONAL"
	case RepetitionRepeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(r))
	}
}

// SchemaNode is one node of the reconstructed schema tree. A node is
// either a group (Children non-nil) or a primitive leaf. Names are
// lower-cased on ingestion so column lookups are case-insensitive by
// construction. Nodes are immutable once the tree is built.
type SchemaNode struct {
	Name       string
	Repetition Repetition
	Children   []*SchemaNode

	// Leaf-only fields
	Kind       Kind
	Logical    LogicalType
	TypeLength int32
	Precision  int32
	Scale      int32
	FieldID    int32

	leaf bool
}

// Leaf reports whether the node is a primitive leaf
func (n *SchemaNode) Leaf() bool {
	return n.leaf
}

// Lookup resolves a column path to its primitive leaf, or nil when the
// path names no leaf in the tree. Path segments must already be
// lower-cased, which ColumnPath guarantees.
func (n *SchemaNode) Lookup(path ColumnPath) *SchemaNode {
	node := n
	for _, segment := range path.segments() {
		if node.leaf {
			return nil
		}
		var next *SchemaNode
		for _, child := range node.Children {
			if child.Name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	if !node.leaf {
		return nil
	}
	return node
}

// Leaves returns every primitive leaf with its full column path, in
// schema order
func (n *SchemaNode) Leaves() []LeafColumn {
	var leaves []LeafColumn
	collectLeaves(n, "", &leaves)
	return leaves
}

// LeafColumn pairs a primitive leaf with its full path from the root
type LeafColumn struct {
	Path ColumnPath
	Node *SchemaNode
}

func collectLeaves(n *SchemaNode, prefix ColumnPath, out *[]LeafColumn) {
	for _, child := range n.Children {
		path := prefix.child(child.Name)
		if child.leaf {
			*out = append(*out, LeafColumn{Path: path, Node: child})
		} else {
			collectLeaves(child, path, out)
		}
	}
}

// ColumnPath is the ordered, lower-cased, dot-joined path of a
// primitive column. It is a comparable value so it can key maps.
type ColumnPath string

// NewColumnPath builds a ColumnPath, lower-casing every segment
func NewColumnPath(segments ...string) ColumnPath {
	lowered := make([]string, len(segments))
	for i, s := range segments {
		lowered[i] = strings.ToLower(s)
	}
	return ColumnPath(strings.Join(lowered, "."))
}

// String returns the dot-joined path segments, for use as a map key
func (p ColumnPath) String() string {
	return string(p)
}

// segments splits the path back into its ordered segments
func (p ColumnPath) segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// child extends the path with one more (already lower-cased) segment
func (p ColumnPath) child(name string) ColumnPath {
	if p == "" {
		return ColumnPath(name)
	}
	return p + ColumnPath("."+name)
}

// buildSchemaTree reconstructs the nested schema from the footer's flat
// pre-order element list. It walks the list with an explicit cursor and
// a stack of remaining-children counters; the walk must consume the list
// exactly, or the footer is malformed.
func buildSchemaTree(elements []format.SchemaElement) (*SchemaNode, error) {
	root, err := newSchemaNode(&elements[0])
	if err != nil {
		return nil, err
	}
	if root.leaf {
		return nil, fmt.Errorf("%w: schema root must be a group", ErrMalformedFooter)
	}

	type frame struct {
		node      *SchemaNode
		remaining int
	}
	stack := []frame{{node: root, remaining: int(elements[0].NumChildren)}}
	cursor := 1

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.remaining == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		if cursor >= len(elements) {
			return nil, fmt.Errorf("%w: schema element list exhausted with %d children outstanding",
				ErrMalformedFooter, top.remaining)
		}

		element := &elements[cursor]
		cursor++
		node, err := newSchemaNode(element)
		if err != nil {
			return nil, err
		}
		top.node.Children = append(top.node.Children, node)
		top.remaining--

		if !node.leaf {
			if element.NumChildren <= 0 {
				return nil, fmt.Errorf("%w: group %q declares no children", ErrMalformedFooter, node.Name)
			}
			stack = append(stack, frame{node: node, remaining: int(element.NumChildren)})
		}
	}

	if cursor != len(elements) {
		return nil, fmt.Errorf("%w: schema tree consumed %d of %d elements",
			ErrMalformedFooter, cursor, len(elements))
	}
	return root, nil
}

func newSchemaNode(element *format.SchemaElement) (*SchemaNode, error) {
	node := &SchemaNode{
		Name:    strings.ToLower(element.Name),
		FieldID: element.FieldID,
	}
	if element.RepetitionType != nil {
		switch *element.RepetitionType {
		case format.Required:
			node.Repetition = RepetitionRequired
		case format.Optional:
			node.Repetition = RepetitionOptional
		case format.Repeated:
			node.Repetition = RepetitionRepeated
		default:
			return nil, fmt.Errorf("%w: repetition type %d for %q",
				ErrMalformedFooter, *element.RepetitionType, element.Name)
		}
	}

	if element.Type == nil {
		// No physical type: this is a group node.
		return node, nil
	}

	kind, ok := kindOf(*element.Type)
	if !ok {
		return nil, fmt.Errorf("%w: physical type %d for column %q",
			ErrUnsupportedEncoding, *element.Type, element.Name)
	}
	node.leaf = true
	node.Kind = kind
	if element.TypeLength != nil {
		node.TypeLength = *element.TypeLength
	}
	if element.Precision != nil {
		node.Precision = *element.Precision
	}
	if element.Scale != nil {
		node.Scale = *element.Scale
	}

	logical, err := resolveLogicalType(element, kind)
	if err != nil {
		return nil, err
	}
	node.Logical = logical
	return node, nil
}

// resolveLogicalType determines a leaf's logical type. The legacy
// converted type wins when present; its mapping is total, so an unmapped
// wire value means a file this reader cannot interpret safely. Without a
// converted type the newer logical type annotation is consulted, and an
// unannotated leaf falls back to its physical kind.
func resolveLogicalType(element *format.SchemaElement, kind Kind) (LogicalType, error) {
	if element.ConvertedType != nil {
		logical, ok := convertedTypeMapping[*element.ConvertedType]
		if !ok {
			return 0, fmt.Errorf("%w: converted type %d on column %q",
				ErrUnsupportedLogicalType, *element.ConvertedType, element.Name)
		}
		return logical, nil
	}
	if lt := element.LogicalType; lt != nil {
		switch {
		case lt.UTF8 != nil:
			return LogicalString, nil
		case lt.Enum != nil:
			return LogicalEnum, nil
		case lt.Json != nil:
			return LogicalJSON, nil
		case lt.Bson != nil:
			return LogicalBSON, nil
		case lt.Date != nil:
			return LogicalDate, nil
		case lt.Decimal != nil:
			return LogicalDecimal, nil
		case lt.Integer != nil:
			return integerLogicalType(lt.Integer.BitWidth, lt.Integer.IsSigned)
		case lt.Map != nil:
			return LogicalMap, nil
		case lt.List != nil:
			return LogicalList, nil
		}
		// Remaining annotations (time, timestamp, UUID, unknown) carry no
		// pruning semantics here; interpret the leaf by its physical kind.
	}
	return defaultLogicalType(kind), nil
}

func integerLogicalType(bitWidth int8, signed bool) (LogicalType, error) {
	switch bitWidth {
	case 8:
		if signed {
			return LogicalInt8, nil
		}
		return LogicalUint8, nil
	case 16:
		if signed {
			return LogicalInt16, nil
		}
		return LogicalUint16, nil
	case 32:
		if signed {
			return LogicalInt32, nil
		}
		return LogicalUint32, nil
	case 64:
		if signed {
			return LogicalInt64, nil
		}
		return LogicalUint64, nil
	default:
		return 0, fmt.Errorf("%w: integer bit width %d", ErrUnsupportedLogicalType, bitWidth)
	}
}
