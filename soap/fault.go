package soap

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Fault is a SOAP 1.1 fault returned by the service in place of the body content.
// It satisfies the error interface, so Client.Do returns it directly.
type Fault struct {
	// XMLName is the serialized name of this object.
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`

	Code   string `xml:"faultcode,omitempty"`
	String string `xml:"faultstring,omitempty"`
	Actor  string `xml:"faultactor,omitempty"`

	// DetailInternal is a handle to the internal fault detail type. Do not directly access;
	// this is made public only to allow for XML deserialization.
	// Use the Detail() and RawDetail() methods instead.
	DetailInternal *faultDetail `xml:"detail,omitempty"`
}

// NewFault returns a new XML fault struct
func NewFault() *Fault {
	return &Fault{}
}

// NewFaultWithDetail returns a new XML fault struct whose detail element is decoded into detail.
// A nil detail keeps the detail element as raw XML.
func NewFaultWithDetail(detail interface{}) *Fault {
	return &Fault{
		DetailInternal: &faultDetail{
			Content: detail,
		},
	}
}

// Detail exposes the type supplied during creation (if a type was supplied).
func (f *Fault) Detail() interface{} {
	if f.DetailInternal == nil {
		return nil
	}
	return f.DetailInternal.Content
}

// RawDetail returns the undecoded contents of the detail element when no detail type was supplied.
func (f *Fault) RawDetail() string {
	if f.DetailInternal == nil {
		return ""
	}
	return f.DetailInternal.raw
}

// LocalCode returns the fault code without its namespace prefix, so "fns:INVALID_VALUE" becomes "INVALID_VALUE".
func (f *Fault) LocalCode() string {
	if i := strings.LastIndexByte(f.Code, ':'); i >= 0 {
		return f.Code[i+1:]
	}
	return f.Code
}

// Error satisfies the Error() interface allowing us to return a fault as an error.
func (f *Fault) Error() string {
	return fmt.Sprintf("soap fault: %s (%s)", f.Code, f.String)
}

// faultDetail is an implementation detail of how we parse out the optional detail element of the XML fault.
type faultDetail struct {
	Content interface{} `xml:",omitempty"`

	raw string
}

type innerXML struct {
	Value string `xml:",innerxml"`
}

// UnmarshalXML is an overridden deserialization routine used to decode a SOAP fault.
// The elements are read from the decoder d, starting at the element start. The contents of the decode are stored
// in the invoking fault f. Any errors encountered are returned.
func (f *faultDetail) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	// Without a detail type we still consume the element so the rest of the fault decodes.
	if f.Content == nil {
		var inner innerXML
		if err := d.DecodeElement(&inner, &start); err != nil {
			return err
		}
		f.raw = strings.TrimSpace(inner.Value)
		return nil
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		} else if token == nil {
			return nil
		}

		switch se := token.(type) {
		case xml.StartElement:
			if err = d.DecodeElement(f.Content, &se); err != nil {
				return err
			}
		case xml.EndElement:
			// If we're at the end XML element we are done and can return.
			return nil
		}
	}
}
