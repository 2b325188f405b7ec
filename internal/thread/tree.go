// Package thread rebuilds the nested reply threads of a document from the flat
// comment list returned by the API.
package thread

import "gosshub/client/internal/model"

// MaxReplyDepth is the deepest node that still offers a reply affordance.
// Deeper nodes render but cannot be replied to.
const MaxReplyDepth = 3

// Node wraps a comment with its replies. Nodes are allocated by Build; the
// caller's comment slice is never modified.
type Node struct {
	Comment  model.Comment `json:"comment"`
	Children []*Node       `json:"children"`
}

// Build returns the root threads, newest root first. Replies keep input order
// at every depth. A comment whose parent is not in the list is dropped along
// with everything below it.
func Build(comments []model.Comment) []*Node {
	nodes := make([]*Node, len(comments))
	byID := make(map[model.ID]*Node, len(comments))
	for i, comment := range comments {
		node := &Node{Comment: comment, Children: []*Node{}}
		nodes[i] = node
		if _, seen := byID[comment.ID]; !seen {
			byID[comment.ID] = node
		}
	}

	roots := make([]*Node, 0)
	for _, node := range nodes {
		if node.Comment.ParentID.IsZero() {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[node.Comment.ParentID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}
	return roots
}

// Walk visits every reachable node depth first, parents before children.
// Roots are at depth 0. Returning an error stops the walk.
func Walk(roots []*Node, fn func(node *Node, depth int) error) error {
	for _, root := range roots {
		if err := walk(root, 0, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(node *Node, depth int, fn func(*Node, int) error) error {
	if err := fn(node, depth); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// CanReply reports whether a node at depth still accepts replies.
func CanReply(depth int) bool {
	return depth >= 0 && depth <= MaxReplyDepth
}

// Count returns the number of nodes reachable from roots.
func Count(roots []*Node) int {
	total := 0
	_ = Walk(roots, func(*Node, int) error {
		total++
		return nil
	})
	return total
}

// Flatten lists reachable comments in walk order.
func Flatten(roots []*Node) []model.Comment {
	out := make([]model.Comment, 0)
	_ = Walk(roots, func(node *Node, _ int) error {
		out = append(out, node.Comment)
		return nil
	})
	return out
}

// Find returns the reachable node with the given id.
func Find(roots []*Node, id model.ID) (*Node, int, bool) {
	var (
		found *Node
		depth int
	)
	errFound := errStop{}
	_ = Walk(roots, func(node *Node, d int) error {
		if node.Comment.ID == id {
			found, depth = node, d
			return errFound
		}
		return nil
	})
	return found, depth, found != nil
}

type errStop struct{}

func (errStop) Error() string { return "stop" }
