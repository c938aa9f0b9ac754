// =============================================================================
// SEPA Direct Debit Builder - XML Writer Module
// =============================================================================
//
// This module holds the mutable element tree the document builder composes
// and serializes it to pretty-printed XML. The tree is intentionally small:
// an element has a name, ordered attributes, and either a text value or child
// elements, which is all a pain.008 message ever needs.
//
// TREE SHAPE:
//
//   <Document xmlns="urn:iso:std:iso:20022:tech:xsd:pain.008.001.02">
//     <CstmrDrctDbtInitn>
//       <GrpHdr>...</GrpHdr>
//       <PmtInf>
//         ...
//         <DrctDbtTxInf>...</DrctDbtTxInf>
//       </PmtInf>
//     </CstmrDrctDbtInitn>
//   </Document>
//
// Text and attribute values are stored raw and escaped exactly once, when the
// tree is written out.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Attr is a single attribute. Names may carry a prefix ("xmlns:xsi").
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree.
type Element struct {
	Name     string
	Attrs    []Attr
	Value    string
	Children []*Element
}

// NewElement creates an element holding the given children.
func NewElement(name string, children ...*Element) *Element {
	element := &Element{Name: name}
	return element.Append(children...)
}

// TextElement creates a leaf element with a text value.
func TextElement(name, value string) *Element {
	return &Element{Name: name, Value: value}
}

// Append adds children in order and returns the receiver. Nil children are
// ignored so optional parts can be composed inline.
func (e *Element) Append(children ...*Element) *Element {
	for _, child := range children {
		if child != nil {
			e.Children = append(e.Children, child)
		}
	}
	return e
}

// SetAttr sets or replaces an attribute and returns the receiver.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of an attribute and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, child := range e.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Walk visits the element and its descendants in document order. Returning
// false from fn skips the visited element's subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.Walk(fn)
	}
}

// FindAll returns every element named name in the subtree rooted at e,
// including e itself, in document order.
func (e *Element) FindAll(name string) []*Element {
	var found []*Element
	e.Walk(func(el *Element) bool {
		if el.Name == name {
			found = append(found, el)
		}
		return true
	})
	return found
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate serializes the tree rooted at root with the default options.
func Generate(root *Element) ([]byte, error) {
	return GenerateWithOptions(root, DefaultGenerateOptions())
}

// GenerateWithOptions serializes the tree rooted at root.
func GenerateWithOptions(root *Element, options GenerateOptions) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("failed to marshal XML: no root element")
	}

	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		fmt.Fprintf(&buffer, "<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding)
	}

	if err := writeElement(&buffer, root, options.Indent, 0); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	return buffer.Bytes(), nil
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) error {
	if element.Name == "" {
		return fmt.Errorf("element at depth %d has no name", level)
	}

	writeIndent(buffer, indent, level)

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attrs {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name, escapeXML(attr.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return nil
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}

		writeIndent(buffer, indent, level)
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")

	return nil
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
