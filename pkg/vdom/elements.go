package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element node with the given tag.
// Arguments can be: nil, Attr, []Attr, *Node, []*Node, string.
// Strings become text children; nil arguments and nil nodes are dropped.
func El(tag string, args ...any) *Node {
	node := &Node{
		Kind:  Tag(tag),
		Props: make(Props),
	}
	applyArgs(node, args)
	return node
}

// Element creates an element node from explicit properties and children.
func Element(tag string, props Props, children ...*Node) *Node {
	if props == nil {
		props = make(Props)
	}
	node := &Node{Kind: Tag(tag), Props: props}
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

// C creates a component node. Arguments follow the rules of El; Attr
// values become the component's props and nodes its declared children.
func C(c Component, args ...any) *Node {
	node := &Node{
		Kind:  Comp(c),
		Props: make(Props),
	}
	applyArgs(node, args)
	return node
}

func applyArgs(node *Node, args []any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" {
				node.Props[v.Key] = v.Value
			}

		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					node.Props[a.Key] = a.Value
				}
			}

		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*Node:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
}

// Content sectioning elements

func Header(args ...any) *Node  { return El("header", args...) }
func Footer(args ...any) *Node  { return El("footer", args...) }
func Main(args ...any) *Node    { return El("main", args...) }
func Nav(args ...any) *Node     { return El("nav", args...) }
func Section(args ...any) *Node { return El("section", args...) }
func Article(args ...any) *Node { return El("article", args...) }
func H1(args ...any) *Node      { return El("h1", args...) }
func H2(args ...any) *Node      { return El("h2", args...) }
func H3(args ...any) *Node      { return El("h3", args...) }

// Text content elements

func Div(args ...any) *Node  { return El("div", args...) }
func P(args ...any) *Node    { return El("p", args...) }
func Span(args ...any) *Node { return El("span", args...) }
func Pre(args ...any) *Node  { return El("pre", args...) }
func Ul(args ...any) *Node   { return El("ul", args...) }
func Ol(args ...any) *Node   { return El("ol", args...) }
func Li(args ...any) *Node   { return El("li", args...) }
func Hr(args ...any) *Node   { return El("hr", args...) }

// Inline text semantics

func A(args ...any) *Node      { return El("a", args...) }
func Strong(args ...any) *Node { return El("strong", args...) }
func Em(args ...any) *Node     { return El("em", args...) }
func Code(args ...any) *Node   { return El("code", args...) }
func Br(args ...any) *Node     { return El("br", args...) }

// Forms

func Form(args ...any) *Node     { return El("form", args...) }
func Input(args ...any) *Node    { return El("input", args...) }
func Button(args ...any) *Node   { return El("button", args...) }
func Label(args ...any) *Node    { return El("label", args...) }
func Select(args ...any) *Node   { return El("select", args...) }
func Option(args ...any) *Node   { return El("option", args...) }
func Textarea(args ...any) *Node { return El("textarea", args...) }
