package soap

import (
	"encoding/xml"
	"mime"
	"net/http"
)

// Response is an HTTP response whose SOAP envelope has been decoded.
type Response struct {
	*http.Response

	body        interface{}
	fault       *Fault
	faultDetail interface{}
}

func newResponse(httpResp *http.Response, req *Request) *Response {
	return &Response{
		Response:    httpResp,
		body:        req.resp,
		faultDetail: req.fault,
	}
}

// Body returns the value the response body was decoded into, as given to NewRequest.
func (r *Response) Body() interface{} {
	return r.body
}

// Fault returns the SOAP fault carried by the response, or nil.
func (r *Response) Fault() *Fault {
	return r.fault
}

func (r *Response) successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// xmlMediaTypes are the content types a SOAP 1.1 or 1.2 service may answer with.
var xmlMediaTypes = map[string]bool{
	"text/xml":             true,
	"application/xml":      true,
	"application/soap+xml": true,
}

func (r *Response) deserialize() error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	if !xmlMediaTypes[mediaType] {
		return ErrUnsupportedContentType
	}

	envelope := NewEnvelopeWithFault(r.body, r.faultDetail)
	if err := xml.NewDecoder(r.Response.Body).Decode(envelope); err != nil {
		return err
	}
	if envelope.Body != nil {
		r.fault = envelope.Body.Fault
	}
	return nil
}
