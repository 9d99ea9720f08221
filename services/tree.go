package services

import (
	"cmp"
	"slices"
)

// TreeNode is one node of a lazily loaded cost hierarchy. Trees are never
// mutated in place: every change returns a rebuilt path from the root, so
// snapshots handed out earlier stay valid.
type TreeNode struct {
	UniqueID       string
	BackendID      string
	Kind           Kind
	DisplayName    string
	Depth          int
	Children       []TreeNode
	Expanded       bool
	ChildrenLoaded bool
}

// HasChildren reports whether the kind can be expanded at all.
func (n TreeNode) HasChildren() bool {
	return n.Kind != KindTool
}

func typePriority(k Kind) int {
	switch k {
	case KindFolder:
		return 1
	case KindProject:
		return 2
	case KindPart:
		return 3
	case KindTool:
		return 4
	default:
		return 99
	}
}

// SortNodes returns a stably sorted copy ordered by kind priority
// (folder, project, part, tool, unknown) then display name.
func SortNodes(nodes []TreeNode) []TreeNode {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b TreeNode) int {
		if c := cmp.Compare(typePriority(a.Kind), typePriority(b.Kind)); c != 0 {
			return c
		}
		return cmp.Compare(a.DisplayName, b.DisplayName)
	})
	return out
}

// ReplaceNode returns a tree where the node with uid is replaced by fn(node).
// Only the nodes on the path to uid are copied. The boolean reports whether
// uid was found; when it is false the input slice is returned as is.
func ReplaceNode(nodes []TreeNode, uid string, fn func(TreeNode) TreeNode) ([]TreeNode, bool) {
	for i, n := range nodes {
		if n.UniqueID == uid {
			out := slices.Clone(nodes)
			out[i] = fn(n)
			return out, true
		}
		if len(n.Children) == 0 {
			continue
		}
		if children, ok := ReplaceNode(n.Children, uid, fn); ok {
			out := slices.Clone(nodes)
			n.Children = children
			out[i] = n
			return out, true
		}
	}
	return nodes, false
}

// WithChildren attaches a fetched child list and marks the node loaded and
// expanded. An empty list still counts as loaded.
func WithChildren(nodes []TreeNode, uid string, children []TreeNode) ([]TreeNode, bool) {
	return ReplaceNode(nodes, uid, func(n TreeNode) TreeNode {
		if children == nil {
			children = []TreeNode{}
		}
		n.Children = children
		n.Expanded = true
		n.ChildrenLoaded = true
		return n
	})
}

// CollapseNode discards the node's children; the next expand refetches.
func CollapseNode(nodes []TreeNode, uid string) ([]TreeNode, bool) {
	return ReplaceNode(nodes, uid, func(n TreeNode) TreeNode {
		n.Children = nil
		n.Expanded = false
		n.ChildrenLoaded = false
		return n
	})
}

// FindNode searches the tree depth first.
func FindNode(nodes []TreeNode, uid string) (TreeNode, bool) {
	for _, n := range nodes {
		if n.UniqueID == uid {
			return n, true
		}
		if found, ok := FindNode(n.Children, uid); ok {
			return found, true
		}
	}
	return TreeNode{}, false
}

// VisibleNodes flattens the tree in display order, descending only into
// expanded nodes.
func VisibleNodes(nodes []TreeNode) []TreeNode {
	var out []TreeNode
	var walk func([]TreeNode)
	walk = func(level []TreeNode) {
		for _, n := range level {
			out = append(out, n)
			if n.Expanded {
				walk(n.Children)
			}
		}
	}
	walk(nodes)
	return out
}
