package soap

import (
	"encoding/xml"
	"errors"
)

const soapEnvNS = "http://schemas.xmlsoap.org/soap/envelope/"

var (
	// ErrEnvelopeMisconfigured is returned when an envelope is decoded without a value to hold the body.
	ErrEnvelopeMisconfigured = errors.New("envelope content or fault pointer empty")
)

// Envelope is a SOAP 1.1 envelope.
type Envelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`

	Header *Header
	Body   *Body
}

// NewEnvelope wraps content in an envelope with no header.
// A fault decoded into this envelope keeps its detail as raw XML.
func NewEnvelope(content interface{}) *Envelope {
	return &Envelope{Body: &Body{Content: content}}
}

// NewEnvelopeWithFault is NewEnvelope for responses: a fault found while
// decoding has its detail element decoded into faultDetail.
func NewEnvelopeWithFault(content interface{}, faultDetail interface{}) *Envelope {
	env := NewEnvelope(content)
	env.Body.Fault = NewFaultWithDetail(faultDetail)
	return env
}

// AddHeaders appends elems to the envelope header, creating the header on first use.
func (e *Envelope) AddHeaders(elems ...interface{}) {
	if e.Header == nil {
		e.Header = &Header{}
	}
	e.Header.Headers = append(e.Header.Headers, elems...)
}

// Header is the SOAP envelope header. Each entry is marshaled as its own element.
type Header struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Header"`

	Headers []interface{} `xml:",omitempty"`
}

// UnmarshalXML decodes the header and body of an envelope. Namespace
// declarations on the envelope are handed down to the body content.
func (e *Envelope) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if start.Name.Space != soapEnvNS || start.Name.Local != "Envelope" {
		return xml.UnmarshalError("expected element type <Envelope> but have <" + start.Name.Local + ">")
	}
	e.XMLName = start.Name
	scope := namespaceScope(nil, start.Attr)

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch elem := token.(type) {
		case xml.StartElement:
			switch {
			case elem.Name.Space == soapEnvNS && elem.Name.Local == "Header":
				if e.Header == nil {
					e.Header = &Header{}
				}
				err = d.DecodeElement(e.Header, &elem)
			case elem.Name.Space == soapEnvNS && elem.Name.Local == "Body":
				if e.Body == nil {
					e.Body = &Body{}
				}
				e.Body.scope = scope
				err = d.DecodeElement(e.Body, &elem)
			default:
				err = d.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// Body is the SOAP envelope body. It holds either Content or, in a response, a Fault.
type Body struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`

	Fault   *Fault      `xml:",omitempty"`
	Content interface{} `xml:",omitempty"`

	scope map[string]string
}

// namespaceInheritor is implemented by content that needs the prefix bindings
// in force around it, such as *Element.
type namespaceInheritor interface {
	inheritNamespaces(scope map[string]string)
}

// UnmarshalXML decodes the body's first element into Content, or into Fault
// when it is a soap:Fault. Once decoding finishes Fault is nil unless the body held one,
// and Content is nil if it did.
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if b.Content == nil {
		return ErrEnvelopeMisconfigured
	}
	// Fault is only allocated here so that encoding a request never emits an empty one.
	fault := b.Fault
	if fault == nil {
		fault = NewFault()
	}
	b.Fault = nil
	scope := namespaceScope(b.scope, start.Attr)

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch elem := token.(type) {
		case xml.StartElement:
			if !isFault(elem.Name) {
				if err := d.DecodeElement(b.Content, &elem); err != nil {
					return err
				}
				if content, ok := b.Content.(namespaceInheritor); ok {
					content.inheritNamespaces(scope)
				}
				continue
			}
			if err := d.DecodeElement(fault, &elem); err != nil {
				return err
			}
			b.Fault = fault
			b.Content = nil
		case xml.EndElement:
			return nil
		}
	}
}

func isFault(name xml.Name) bool {
	return name.Space == soapEnvNS && name.Local == "Fault"
}
