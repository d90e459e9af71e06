package vdom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// VirtualNode is an in-memory stand-in for a DOM node.
//
// A VirtualNode never copies the node it wraps. It holds the reference only for
// the duration of an evaluation and has no ownership of it.
//
// VirtualNode is not safe for concurrent use: Children builds its wrappers
// lazily on first access.
type VirtualNode struct {
	// actualNode is the wrapped node. Never nil.
	actualNode *html.Node

	// parent is the wrapper this node was reached from, if any.
	parent *VirtualNode

	// children caches the wrapped child nodes once built.
	children []*VirtualNode

	// childrenBuilt reports whether children has been populated.
	childrenBuilt bool

	// synthetic is true when the node is the placeholder created for an
	// absent input.
	synthetic bool
}

// New wraps node in a VirtualNode.
// If node is nil, the returned VirtualNode wraps a synthetic empty element
// node, so ActualNode never returns nil.
func New(node *html.Node) *VirtualNode {
	if node == nil {
		return &VirtualNode{
			actualNode: &html.Node{Type: html.ElementNode},
			synthetic:  true,
		}
	}
	return &VirtualNode{actualNode: node}
}

// ActualNode returns the wrapped node, exactly as it was passed to New.
func (v *VirtualNode) ActualNode() *html.Node {
	return v.actualNode
}

// IsSynthetic reports whether the node is the empty placeholder created for a
// nil input.
func (v *VirtualNode) IsSynthetic() bool {
	return v.synthetic
}

// Parent returns the wrapper this node was reached from through Children.
// It returns nil for a root wrapper.
func (v *VirtualNode) Parent() *VirtualNode {
	return v.parent
}

// NodeName returns the lower-case element name, or "#text", "#comment",
// "#document" for the corresponding non-element nodes.
func (v *VirtualNode) NodeName() string {
	switch v.actualNode.Type {
	case html.ElementNode:
		return strings.ToLower(v.actualNode.Data)
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	case html.DoctypeNode:
		return "#doctype"
	default:
		return ""
	}
}

// IsElement reports whether the wrapped node is an element.
func (v *VirtualNode) IsElement() bool {
	return v.actualNode.Type == html.ElementNode
}

// Attr returns the value of the named attribute and whether it is present.
// Attribute names are matched case-insensitively.
func (v *VirtualNode) Attr(name string) (string, bool) {
	return getAttr(v.actualNode, name)
}

// HasAttr reports whether the named attribute is present.
func (v *VirtualNode) HasAttr(name string) bool {
	_, ok := getAttr(v.actualNode, name)
	return ok
}

// Attributes returns a copy of the node's attributes keyed by lower-case name.
// When an attribute is repeated, the first occurrence wins, matching browsers.
func (v *VirtualNode) Attributes() map[string]string {
	attrs := make(map[string]string, len(v.actualNode.Attr))
	for _, a := range v.actualNode.Attr {
		key := strings.ToLower(a.Key)
		if _, exists := attrs[key]; !exists {
			attrs[key] = a.Val
		}
	}
	return attrs
}

// Text returns the text content of the node and its descendants with runs of
// whitespace collapsed to a single space.
func (v *VirtualNode) Text() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(v.actualNode)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Children returns wrappers for the element and text children of the node.
// Comments and other node types are skipped.
func (v *VirtualNode) Children() []*VirtualNode {
	if v.childrenBuilt {
		return v.children
	}

	v.children = make([]*VirtualNode, 0)
	for c := v.actualNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode && c.Type != html.TextNode {
			continue
		}
		v.children = append(v.children, &VirtualNode{actualNode: c, parent: v})
	}
	v.childrenBuilt = true

	return v.children
}

// Walk visits the node and its element descendants in document order.
// Returning false from fn skips the subtree below the visited node.
func (v *VirtualNode) Walk(fn func(*VirtualNode) bool) {
	if !fn(v) {
		return
	}
	for _, child := range v.Children() {
		if !child.IsElement() {
			continue
		}
		child.Walk(fn)
	}
}

// IsHidden reports whether the node is hidden from all users by markup alone:
// the hidden attribute, an input of type hidden, or an inline style setting
// display:none or visibility:hidden.
//
// Virtual nodes have no computed style, so this is the only notion of
// hidden content available to them.
func (v *VirtualNode) IsHidden() bool {
	if !v.IsElement() {
		return false
	}
	if v.HasAttr("hidden") {
		return true
	}
	if v.NodeName() == "input" {
		if t, _ := v.Attr("type"); strings.EqualFold(strings.TrimSpace(t), "hidden") {
			return true
		}
	}

	style, ok := v.Attr("style")
	if !ok {
		return false
	}
	for _, decl := range strings.Split(style, ";") {
		prop, val, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "!important")))
		if (prop == "display" && val == "none") || (prop == "visibility" && val == "hidden") {
			return true
		}
	}

	return false
}

// HTML renders the node back to markup.
// The synthetic placeholder renders as an empty string.
func (v *VirtualNode) HTML() string {
	if v.synthetic {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, v.actualNode); err != nil {
		return ""
	}
	return sb.String()
}

// Properties returns a plain map view of the node for expression and script
// engines: nodeName, attributes, text, and childCount.
func (v *VirtualNode) Properties() map[string]any {
	attrs := v.Attributes()
	attrMap := make(map[string]any, len(attrs))
	for k, val := range attrs {
		attrMap[k] = val
	}

	childCount := 0
	for _, c := range v.Children() {
		if c.IsElement() {
			childCount++
		}
	}

	return map[string]any{
		"nodeName":   v.NodeName(),
		"attributes": attrMap,
		"text":       v.Text(),
		"childCount": int64(childCount),
		"hidden":     v.IsHidden(),
	}
}

// AttributeNames returns the node's attribute names in sorted order.
func (v *VirtualNode) AttributeNames() []string {
	attrs := v.Attributes()
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}
