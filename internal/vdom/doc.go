// Package vdom provides the virtual DOM used to evaluate accessibility rules
// without a live page.
//
// A VirtualNode wraps a *html.Node from golang.org/x/net/html. The wrap is
// identity preserving: ActualNode returns the exact pointer the caller gave,
// so collaborators can always recover the original reference. When no node is
// supplied, New creates a synthetic empty element node as a placeholder.
//
// Nodes can come from three places:
//   - a caller that already holds an *html.Node
//   - ParseFragment, which parses an HTML snippet
//   - FromSerial, which builds a node tree from a plain SerialNode description
//
// Design decision: We build on golang.org/x/net/html rather than a custom
// node type because:
//  1. It handles malformed markup the same way browsers do
//  2. Callers that already parsed a document can hand us nodes directly
//  3. Rendering a node back to markup (for reports) comes for free
package vdom
