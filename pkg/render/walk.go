package render

// Walk visits root and its descendants depth-first in render order. Returning
// false from fn skips the node's descendants.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Nodes() {
		Walk(child, fn)
	}
}

// Find returns the outermost node resolved for path. Several nodes can share a
// path (a tab role and the node it wraps, for example); the first one reached
// in render order wins.
func Find(root Node, path Path) (Node, bool) {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.Location().Equal(path) {
			found = n
			return false
		}
		return path.HasPrefix(n.Location())
	})
	return found, found != nil
}

// Collect returns every node of the given kind in render order.
func Collect(root Node, kind Kind) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		if n.Kind() == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}
