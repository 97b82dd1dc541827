package scene

import "github.com/galvanized-assets/sceneimport/linalg"

// Node is one entry in the scene hierarchy (spec.md §3). Transform is
// relative to Parent. Parent is a weak back-reference used only for lookup
// during construction/validation; Children is the owning slice.
type Node struct {
	Name      string
	Transform linalg.Mat4
	Parent    *Node
	Children  []*Node

	// Meshes holds indices into Scene.Meshes referenced by this node.
	Meshes []int
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: linalg.Identity4()}
}

// AddChild appends child to n.Children and sets child.Parent = n.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Walk calls fn for n and, recursively, for every descendant, depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node (n or a descendant) whose Name equals name
// under the given equality function, or nil.
func (n *Node) Find(name string, eq func(a, b string) bool) *Node {
	var found *Node
	n.Walk(func(cur *Node) {
		if found == nil && eq(cur.Name, name) {
			found = cur
		}
	})
	return found
}

// WorldTransform returns the accumulated transform from the scene root to n.
func (n *Node) WorldTransform() linalg.Mat4 {
	if n.Parent == nil {
		return n.Transform
	}
	var m linalg.Mat4
	return *m.Mult(n.Transform, n.Parent.WorldTransform())
}
