package api

// TreeNode is one node of the reconstructed spatial hierarchy.
// The root is always the model's project record. The structure is a tree,
// not a DAG: a record related to several parents appears under the first
// parent that discovered it.
type TreeNode struct {
	// ID is the record's express id in the source model.
	ID uint32 `json:"expressID"`
	// Type is the record's type name (e.g. IFCBUILDINGSTOREY).
	Type string `json:"type"`
	// Properties holds the node's own field payload when the structure was
	// built with properties included.
	Properties map[string]any `json:"properties,omitempty"`
	// Children in contract order: aggregates-derived first, then
	// spatial-containment-derived, each in chunk order.
	Children []*TreeNode `json:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted here,
// including the receiver.
func (n *TreeNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
