// Package framegraph keeps the frames of a play in a consistent rooted tree
// and answers path, tree and traversal queries over it. Every traversal is
// guarded by a visited set so malformed imports cannot recurse forever.
package framegraph

import "github.com/nebrenner/basketball-play-author/pkg/core"

// Node is one entry of the nested tree view.
type Node struct {
	Frame    *core.Frame
	Children []*Node
}

// Normalize returns a repaired copy of play. The first frame becomes the
// root, any other frame whose parent is missing, unknown or itself is
// re-parented onto the previous frame in the list, and every
// NextFrameIDs list is rebuilt from the parent pointers in list order.
// Stored child lists are discarded. The input is not modified.
func Normalize(play *core.Play) *core.Play {
	if play == nil {
		return nil
	}
	out := play.Clone()
	if len(out.Frames) == 0 {
		return out
	}

	known := make(map[string]struct{}, len(out.Frames))
	for _, f := range out.Frames {
		known[f.ID] = struct{}{}
	}

	for i, f := range out.Frames {
		if f.Tokens == nil {
			f.Tokens = map[string]core.Point{}
		}
		if f.Arrows == nil {
			f.Arrows = []string{}
		}
		if i == 0 {
			f.ParentID = ""
			continue
		}
		_, ok := known[f.ParentID]
		if f.ParentID == "" || !ok || f.ParentID == f.ID {
			f.ParentID = out.Frames[i-1].ID
		}
	}

	children := make(map[string][]string, len(out.Frames))
	seen := make(map[string]map[string]struct{}, len(out.Frames))
	for _, f := range out.Frames {
		if f.ParentID == "" {
			continue
		}
		if seen[f.ParentID] == nil {
			seen[f.ParentID] = map[string]struct{}{}
		}
		if _, dup := seen[f.ParentID][f.ID]; dup {
			continue
		}
		seen[f.ParentID][f.ID] = struct{}{}
		children[f.ParentID] = append(children[f.ParentID], f.ID)
	}
	for _, f := range out.Frames {
		f.NextFrameIDs = append([]string{}, children[f.ID]...)
	}

	return out
}

// orderChildren keeps the stored child order for ids that are real children
// and appends the remaining real children in list order. Only the tree view
// honours a stored order; Normalize rebuilds it.
func orderChildren(stored, actual []string) []string {
	out := make([]string, 0, len(actual))
	if len(actual) == 0 {
		return out
	}
	isChild := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		isChild[id] = struct{}{}
	}
	placed := make(map[string]struct{}, len(actual))
	for _, id := range stored {
		if _, ok := isChild[id]; !ok {
			continue
		}
		if _, dup := placed[id]; dup {
			continue
		}
		placed[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range actual {
		if _, ok := placed[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Root returns the first frame without a parent.
func Root(play *core.Play) (*core.Frame, bool) {
	for _, f := range play.Frames {
		if f.IsRoot() {
			return f, true
		}
	}
	return nil, false
}

// PathTo returns the frame ids from the root down to targetID. It returns
// nil when the target is unknown. On a cycle the partial path collected so
// far is returned.
func PathTo(play *core.Play, targetID string) []string {
	if play == nil {
		return nil
	}
	byID := make(map[string]*core.Frame, len(play.Frames))
	for _, f := range play.Frames {
		byID[f.ID] = f
	}
	if _, ok := byID[targetID]; !ok {
		return nil
	}

	var path []string
	seen := make(map[string]struct{})
	for id := targetID; id != ""; {
		if _, loop := seen[id]; loop {
			break
		}
		f, ok := byID[id]
		if !ok {
			break
		}
		seen[id] = struct{}{}
		path = append(path, id)
		id = f.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) == 0 {
		return nil
	}
	return path
}

// Depth returns the number of edges between the root and frameID, or -1.
func Depth(play *core.Play, frameID string) int {
	return len(PathTo(play, frameID)) - 1
}

// BuildTree returns the nested tree view of play. Roots are frames without
// a valid parent, in list order. Frames left unreached because of a cycle
// are appended as extra roots so every frame appears once.
func BuildTree(play *core.Play) []*Node {
	if play == nil || len(play.Frames) == 0 {
		return nil
	}

	byID := make(map[string]*core.Frame, len(play.Frames))
	for _, f := range play.Frames {
		byID[f.ID] = f
	}
	actual := make(map[string][]string, len(play.Frames))
	var roots []*core.Frame
	for _, f := range play.Frames {
		_, parentKnown := byID[f.ParentID]
		if f.ParentID == "" || !parentKnown || f.ParentID == f.ID {
			roots = append(roots, f)
			continue
		}
		actual[f.ParentID] = append(actual[f.ParentID], f.ID)
	}

	visited := make(map[string]struct{}, len(play.Frames))
	var build func(f *core.Frame) *Node
	build = func(f *core.Frame) *Node {
		visited[f.ID] = struct{}{}
		node := &Node{Frame: f}
		for _, id := range orderChildren(f.NextFrameIDs, actual[f.ID]) {
			if _, done := visited[id]; done {
				continue
			}
			node.Children = append(node.Children, build(byID[id]))
		}
		return node
	}

	tree := make([]*Node, 0, len(roots))
	for _, r := range roots {
		if _, done := visited[r.ID]; done {
			continue
		}
		tree = append(tree, build(r))
	}
	for _, f := range play.Frames {
		if _, done := visited[f.ID]; done {
			continue
		}
		tree = append(tree, build(f))
	}
	return tree
}

// PlaybackOrder returns the depth-first tour used to animate a whole play.
// A parent id is emitted again between siblings so playback returns to the
// branch point before taking the next option. Linear chains never repeat
// an id.
func PlaybackOrder(play *core.Play) []string {
	normalized := Normalize(play)
	tree := BuildTree(normalized)
	if len(tree) == 0 {
		return nil
	}

	var order []string
	visited := make(map[string]struct{})
	var walk func(n *Node)
	walk = func(n *Node) {
		if _, done := visited[n.Frame.ID]; done {
			return
		}
		visited[n.Frame.ID] = struct{}{}
		order = append(order, n.Frame.ID)
		for i, child := range n.Children {
			walk(child)
			if i < len(n.Children)-1 {
				order = append(order, n.Frame.ID)
			}
		}
	}
	walk(tree[0])
	return order
}

// Walk visits every node of the tree depth first, parents before children.
func Walk(tree []*Node, fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, n := range tree {
		visit(n, 0)
	}
}
