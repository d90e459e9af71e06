package vdom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoElement is returned by ParseFragment when the markup contains no
// element node.
var ErrNoElement = errors.New("markup contains no element")

// SerialNode is a plain description of a node, used to build virtual nodes
// without writing markup.
//
// A NodeName of "#text" describes a text node whose content is Text.
// Any other NodeName describes an element.
type SerialNode struct {
	// NodeName is the element name (e.g. "img") or "#text".
	NodeName string `json:"nodeName" yaml:"nodeName"`

	// Attributes are the element's attributes.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Text is the content of a "#text" node. Ignored for elements.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Children are the node's children in document order.
	Children []SerialNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// FromSerial builds an *html.Node tree from a SerialNode description.
// Attributes are emitted in sorted order so the result is deterministic.
func FromSerial(s SerialNode) *html.Node {
	if s.NodeName == "#text" {
		return &html.Node{Type: html.TextNode, Data: s.Text}
	}

	name := strings.ToLower(strings.TrimSpace(s.NodeName))
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}

	keys := make([]string, 0, len(s.Attributes))
	for k := range s.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(k), Val: s.Attributes[k]})
	}

	for _, child := range s.Children {
		n.AppendChild(FromSerial(child))
	}

	return n
}

// ParseFragment parses HTML markup and returns its first element.
//
// Markup whose first token, after whitespace and comments, is a doctype or an
// <html> tag is parsed as a full document and the <html> element is returned,
// so document-level attributes such as lang survive. Anything else is parsed
// as a fragment in <body> context.
func ParseFragment(r io.Reader) (*html.Node, error) {
	markup, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markup: %w", err)
	}

	if isDocumentMarkup(markup) {
		doc, err := html.Parse(bytes.NewReader(markup))
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		if el := firstElement(doc); el != nil {
			return el, nil
		}
		return nil, ErrNoElement
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}

	for _, n := range nodes {
		if el := firstElement(n); el != nil {
			return el, nil
		}
	}

	return nil, ErrNoElement
}

// ParseString is a convenience wrapper around ParseFragment.
func ParseString(markup string) (*html.Node, error) {
	return ParseFragment(strings.NewReader(markup))
}

// isDocumentMarkup reports whether the first significant token of markup is
// a doctype or an <html> start tag.
func isDocumentMarkup(markup []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(markup))
	for {
		switch z.Next() {
		case html.CommentToken:
		case html.TextToken:
			if len(bytes.TrimSpace(z.Text())) > 0 {
				return false
			}
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return string(name) == "html"
		default:
			return false
		}
	}
}

// firstElement returns n itself if it is an element, or its first element
// descendant in document order.
func firstElement(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el := firstElement(c); el != nil {
			return el
		}
	}
	return nil
}
