package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string

	// NodeIDs adds a data-lid attribute with the node id to every element
	// and a <!--lid:N--> marker before every text node.
	NodeIDs bool
}

// Renderer renders dom trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders e and its subtree to a string.
func (r *Renderer) RenderToString(e *dom.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams e and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, e *dom.Element) error {
	return r.renderNode(w, e, 0)
}

// RenderChildren renders the children of e without e itself. It is the
// usual way to render a mount element.
func (r *Renderer) RenderChildren(e *dom.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.WriteChildren(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteChildren streams the children of e to w.
func (r *Renderer) WriteChildren(w io.Writer, e *dom.Element) error {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if err := r.renderNode(w, c, 0); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderNode(w io.Writer, e *dom.Element, depth int) error {
	if e == nil {
		return nil
	}
	if e.IsText() {
		if r.config.NodeIDs {
			if _, err := fmt.Fprintf(w, "<!--lid:%d-->", e.ID); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, escapeHTML(e.NodeValue()))
		return err
	}
	if e.Tag == "" || strings.HasPrefix(e.Tag, "#") {
		return fmt.Errorf("render: cannot render node kind %q", e.Tag)
	}
	return r.renderElement(w, e, depth)
}

func (r *Renderer) renderElement(w io.Writer, e *dom.Element, depth int) error {
	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", e.Tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, e); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if vdom.IsVoidElement(e.Tag) {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	block := r.config.Pretty && hasElementChildren(e)
	if block {
		io.WriteString(w, "\n")
	}
	for _, c := range e.Children {
		if err := r.renderNode(w, c, depth+1); err != nil {
			return err
		}
	}
	if block {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "</%s>", e.Tag); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

// renderAttributes renders all attributes for an element.
func (r *Renderer) renderAttributes(w io.Writer, e *dom.Element) error {
	if r.config.NodeIDs {
		if _, err := fmt.Fprintf(w, ` data-lid="%d"`, e.ID); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(e.Props))
	for key := range e.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := e.Props[key]
		name := attrName(key)
		if name == "" || (name == "style" && len(e.Style) > 0) {
			continue
		}

		if isBooleanAttr(name) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := fmt.Fprintf(w, " %s", name); err != nil {
						return err
					}
				}
				continue
			}
		}

		if s := attrToString(value); s != "" {
			if _, err := fmt.Fprintf(w, ` %s="%s"`, name, escapeAttr(s)); err != nil {
				return err
			}
		}
	}

	if css := StyleString(e.Style); css != "" {
		if _, err := fmt.Fprintf(w, ` style="%s"`, escapeAttr(css)); err != nil {
			return err
		}
	}

	events := make([]string, 0, len(e.Listeners))
	for event, ls := range e.Listeners {
		if len(ls) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	for _, event := range events {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, event); err != nil {
			return err
		}
	}
	return nil
}

// attrName maps a property key to its HTML attribute name, or "" for
// properties that are not rendered.
func attrName(key string) string {
	switch {
	case key == vdom.NodeValue, strings.HasPrefix(key, "_"), vdom.IsEventHandler(key):
		return ""
	case key == "className":
		return "class"
	case key == "htmlFor":
		return "for"
	}
	return key
}

// StyleString formats style declarations as CSS text. Keys may be given
// in camelCase ("textDecoration") or CSS form ("text-decoration").
func StyleString(decls map[string]string) string {
	if len(decls) == 0 {
		return ""
	}
	keys := make([]string, 0, len(decls))
	for k := range decls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if decls[k] == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(CSSProperty(k))
		sb.WriteString(": ")
		sb.WriteString(decls[k])
		sb.WriteString(";")
	}
	return sb.String()
}

// CSSProperty converts a camelCase style key to its CSS property name.
func CSSProperty(key string) string {
	var sb strings.Builder
	sb.Grow(len(key) + 2)
	for _, c := range key {
		if c >= 'A' && c <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(c + ('a' - 'A'))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

func hasElementChildren(e *dom.Element) bool {
	for _, c := range e.Children {
		if !c.IsText() {
			return true
		}
	}
	return false
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
