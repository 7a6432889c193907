package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
)

// Request represents a single request to a SOAP service.
type Request struct {
	headers     []interface{}
	httpHeaders http.Header

	url    string
	action string

	body  interface{}
	resp  interface{}
	fault interface{}
}

// NewRequest creates a SOAP request. This differs from a standard HTTP request in several ways.
// First, the SOAP library takes care of handling the envelope, so when the request is created
// the response and fault types are supplied so they can be properly parsed during envelope handling.
// Second, the body is supplied here rather than as a reader, and is serialized when the request is sent.
func NewRequest(action string, url string, body interface{}, respType interface{}, faultType interface{}) *Request {
	req := &Request{
		action:      action,
		url:         url,
		body:        body,
		resp:        respType,
		fault:       faultType,
		httpHeaders: make(http.Header),
	}

	return req
}

// AddHeader adds the header argument to the list of elements set in the SOAP envelope Header element.
// This will be serialized to XML when the request is made to the service.
func (r *Request) AddHeader(header interface{}) {
	r.headers = append(r.headers, header)
}

// Header returns the HTTP headers sent with the request.
// Content-Type and SOAPAction are always overwritten when the request is sent.
func (r *Request) Header() http.Header {
	return r.httpHeaders
}

// URL returns the endpoint the request is sent to.
func (r *Request) URL() string {
	return r.url
}

// serialize takes the data supplied in the request and serializes the SOAP data to the returned reader.
func (r *Request) serialize() (io.Reader, error) {
	envelope := NewEnvelope(r.body)

	if len(r.headers) > 0 {
		envelope.AddHeaders(r.headers...)
	}

	envelopeEnc, err := xml.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBufferString(xml.Header)
	buf.Write(envelopeEnc)
	return buf, nil
}

func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	buf, err := r.serialize()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, buf)
	if err != nil {
		return nil, err
	}

	for key, values := range r.httpHeaders {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=\"utf-8\"")
	httpReq.Header.Set("SOAPAction", r.action)

	return httpReq, nil
}
