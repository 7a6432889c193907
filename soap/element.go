package soap

import (
	"bytes"
	"encoding/xml"
	"maps"
	"slices"
	"strconv"
)

const xmlNS = "http://www.w3.org/XML/1998/namespace"

// Element captures a single XML element without a predefined type.
// It is used as the response type when the caller does not know the shape of the body.
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`

	// scope holds the prefix bindings inherited from the envelope and body.
	scope map[string]string
}

func (e *Element) inheritNamespaces(scope map[string]string) {
	if scope == nil {
		scope = map[string]string{}
	}
	e.scope = scope
}

// Decode unmarshals the captured element into v.
// Every namespace binding in scope where the element was decoded is re-declared,
// so prefixed children and attributes resolve as they did in the response.
func (e *Element) Decode(v interface{}) error {
	scope := namespaceScope(e.scope, e.Attrs)
	if _, ok := scope[""]; !ok && e.scope == nil && e.XMLName.Space != "" {
		// Built by hand: unprefixed inner elements belong to the element's namespace.
		scope = maps.Clone(scope)
		if scope == nil {
			scope = make(map[string]string)
		}
		scope[""] = e.XMLName.Space
	}

	var buf bytes.Buffer
	name := e.XMLName.Local
	if e.XMLName.Space != "" {
		prefix := unusedPrefix(scope, "_e")
		name = prefix + ":" + name
		writeAttr(&buf, "xmlns:"+prefix, e.XMLName.Space)
	}
	if def, ok := scope[""]; ok {
		writeAttr(&buf, "xmlns", def)
	}
	for _, prefix := range slices.Sorted(maps.Keys(scope)) {
		if prefix != "" {
			writeAttr(&buf, "xmlns:"+prefix, scope[prefix])
		}
	}

	for _, attr := range e.Attrs {
		switch {
		case isNamespaceDecl(attr.Name):
			continue
		case attr.Name.Space == "":
			writeAttr(&buf, attr.Name.Local, attr.Value)
		case attr.Name.Space == xmlNS:
			writeAttr(&buf, "xml:"+attr.Name.Local, attr.Value)
		default:
			prefix, ok := prefixFor(scope, attr.Name.Space)
			if !ok {
				prefix = unusedPrefix(scope, "_a")
				scope = maps.Clone(scope)
				if scope == nil {
					scope = make(map[string]string)
				}
				scope[prefix] = attr.Name.Space
				writeAttr(&buf, "xmlns:"+prefix, attr.Name.Space)
			}
			writeAttr(&buf, prefix+":"+attr.Name.Local, attr.Value)
		}
	}

	var doc bytes.Buffer
	doc.WriteString("<" + name)
	doc.Write(buf.Bytes())
	doc.WriteString(">")
	doc.WriteString(e.Inner)
	doc.WriteString("</" + name + ">")

	return xml.Unmarshal(doc.Bytes(), v)
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteString(" " + name + `="`)
	xml.EscapeText(buf, []byte(value))
	buf.WriteString(`"`)
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

// namespaceScope returns parent extended with the declarations found in attrs.
// parent is never modified.
func namespaceScope(parent map[string]string, attrs []xml.Attr) map[string]string {
	scope := parent
	cloned := false
	for _, attr := range attrs {
		if !isNamespaceDecl(attr.Name) {
			continue
		}
		if !cloned {
			scope = maps.Clone(parent)
			if scope == nil {
				scope = make(map[string]string)
			}
			cloned = true
		}
		prefix := ""
		if attr.Name.Space == "xmlns" {
			prefix = attr.Name.Local
		}
		scope[prefix] = attr.Value
	}
	return scope
}

func prefixFor(scope map[string]string, space string) (string, bool) {
	for _, prefix := range slices.Sorted(maps.Keys(scope)) {
		if prefix != "" && scope[prefix] == space {
			return prefix, true
		}
	}
	return "", false
}

func unusedPrefix(scope map[string]string, base string) string {
	prefix := base
	for i := 0; ; i++ {
		if _, taken := scope[prefix]; !taken {
			return prefix
		}
		prefix = base + strconv.Itoa(i)
	}
}
