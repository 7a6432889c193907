package soap

import (
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
)

var (
	// ErrInvalidWSDL is returned if the document is not rooted at a WSDL definitions element.
	ErrInvalidWSDL = errors.New("document is not a WSDL definitions element")
	// ErrNoWSDLEndpoint is returned if no service port in the WSDL declares an address location.
	ErrNoWSDLEndpoint = errors.New("no service endpoint found in WSDL")
)

// ReadWSDLEndpoint reads a WSDL 1.1 document and returns the location of the first
// service port address. SOAP 1.1 addresses are preferred over any other binding
// (soap12:address, http:address) declared on the same service.
func ReadWSDLEndpoint(r io.Reader) (string, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return "", err
	}

	root := doc.Root()
	if root == nil || root.Tag != "definitions" {
		return "", ErrInvalidWSDL
	}

	var fallback string
	for _, service := range root.SelectElements("service") {
		for _, port := range service.SelectElements("port") {
			for _, addr := range port.SelectElements("address") {
				location := strings.TrimSpace(addr.SelectAttrValue("location", ""))
				if location == "" {
					continue
				}
				if addr.NamespaceURI() == wsdlSOAPNS {
					return location, nil
				}
				if fallback == "" {
					fallback = location
				}
			}
		}
	}

	if fallback == "" {
		return "", ErrNoWSDLEndpoint
	}
	return fallback, nil
}

const wsdlSOAPNS = "http://schemas.xmlsoap.org/wsdl/soap/"
