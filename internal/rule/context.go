package rule

import (
	"golang.org/x/net/html"

	"github.com/nao1215/a11yscan/internal/vdom"
)

// Context is the set of nodes a rule is evaluated against.
type Context struct {
	// Include holds the roots of the subtrees to evaluate.
	Include []*vdom.VirtualNode

	// Exclude holds roots of subtrees to skip. The virtual rule path never
	// populates it.
	Exclude []*vdom.VirtualNode

	// ExcludeHidden is the hidden-content policy in effect for this
	// evaluation. Invoke copies it from the rule definition.
	ExcludeHidden bool
}

// BuildContext wraps node into a fresh Context whose Include holds exactly one
// virtual node and whose Exclude is empty.
//
// A nil node is replaced by a synthetic empty node. A non-nil node is wrapped
// without copying: Include[0].ActualNode() returns node itself.
func BuildContext(node *html.Node) *Context {
	return &Context{
		Include: []*vdom.VirtualNode{vdom.New(node)},
	}
}

// Candidates returns the element nodes an evaluator should consider: every
// Include root and its element descendants in document order, minus the
// Exclude subtrees and, when ExcludeHidden is set, minus hidden subtrees.
func (c *Context) Candidates() []*vdom.VirtualNode {
	excluded := make(map[*html.Node]struct{}, len(c.Exclude))
	for _, e := range c.Exclude {
		excluded[e.ActualNode()] = struct{}{}
	}

	out := make([]*vdom.VirtualNode, 0)
	for _, root := range c.Include {
		if !root.IsElement() {
			continue
		}
		root.Walk(func(n *vdom.VirtualNode) bool {
			if _, skip := excluded[n.ActualNode()]; skip {
				return false
			}
			if c.ExcludeHidden && n.IsHidden() {
				return false
			}
			out = append(out, n)
			return true
		})
	}

	return out
}
