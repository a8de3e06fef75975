package dom

// MutationKind identifies the type of a document mutation.
type MutationKind int

const (
	// ElementAdded records an element entering the document tree.
	ElementAdded MutationKind = iota
	// ElementRemoved records an element leaving the document tree.
	ElementRemoved
	// AttributeChanged records an attribute being set or removed.
	AttributeChanged
)

func (k MutationKind) String() string {
	switch k {
	case ElementAdded:
		return "added"
	case ElementRemoved:
		return "removed"
	case AttributeChanged:
		return "attribute"
	default:
		return "unknown"
	}
}

// MutationRecord describes one observed change to the document.
//
// Structural changes produce one record per element node entering or leaving
// the tree, in document order, so observers never need to walk subtrees
// themselves. Attribute records carry the previous value; OldValue is the
// empty string when the attribute was previously absent.
type MutationRecord struct {
	Kind     MutationKind
	Element  Element
	AttrName string
	OldValue string
}

// recordSubtree appends one record of the given kind for every element node
// in the subtree rooted at el, in document order.
func (d *Document) recordSubtree(kind MutationKind, el Element) {
	el.walkSubtree(func(e Element) bool {
		d.records = append(d.records, MutationRecord{Kind: kind, Element: e})
		return true
	})
}

// recordAttribute appends an attribute change record.
func (d *Document) recordAttribute(el Element, name, old string) {
	d.records = append(d.records, MutationRecord{
		Kind:     AttributeChanged,
		Element:  el,
		AttrName: name,
		OldValue: old,
	})
}

// TakeMutations drains and returns the buffered mutation records in the
// order the mutations occurred. It returns nil when no mutations are
// pending.
func (d *Document) TakeMutations() []MutationRecord {
	if len(d.records) == 0 {
		return nil
	}
	records := d.records
	d.records = nil
	return records
}

// HasPendingMutations reports whether any mutation records are buffered.
func (d *Document) HasPendingMutations() bool {
	return len(d.records) > 0
}
