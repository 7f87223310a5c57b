// Package render serializes in-memory documents to HTML.
//
// The renderer walks a dom.Element tree, so whatever the engine committed
// can be served as a page or stored as a snapshot:
//
//	renderer := render.NewRenderer(render.RendererConfig{NodeIDs: true})
//	html, err := renderer.RenderChildren(doc.Root)
//
// Output is deterministic: attributes and style declarations are sorted,
// text and attribute values are escaped, and void elements have no closing
// tag. With NodeIDs set, each element carries a data-lid attribute naming
// its node id and each text node is preceded by a <!--lid:N--> comment,
// which lets a browser client address nodes in later mutation frames. The
// marker also keeps adjacent text nodes apart when the markup is parsed. Elements with listeners carry data-on-<event> markers.
package render
