package soap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnsupportedContentType is returned if we encounter a non-supported content type while querying
	ErrUnsupportedContentType = errors.New("unsupported content-type in response")
)

// StatusError is returned when the service answers with a non-2xx status and the body
// does not carry a SOAP fault we could decode.
type StatusError struct {
	StatusCode int
	Status     string

	// Err is the decoding error encountered while looking for a fault, if any.
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("soap: unexpected HTTP status %s", e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when the request could not be serialized.
// Nothing has been sent to the service when this error is seen.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "soap: encoding request: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Client is an opaque handle to a SOAP service.
type Client struct {
	http *http.Client
}

// NewClient creates a new Client that will access a SOAP service.
// Requests made using this client will all be wrapped in a SOAP envelope.
// A nil httpClient selects http.DefaultClient, which has no timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http: httpClient,
	}
}

// Do invokes the SOAP request using its internal parameters.
// The request body is serialized to XML, and if the call is successful the received XML
// is deserialized into the response type supplied with the request.
// A SOAP fault in the response is returned as a *Fault error, with its detail element
// deserialized into the fault detail type of the request.
// A non-2xx response without a fault is returned as a *StatusError.
// Transport errors from the underlying HTTP client are returned unchanged.
// The Response is returned whenever the service answered, even alongside an error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := req.httpRequest(ctx)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	resp := newResponse(httpResp, req)
	err = resp.deserialize()
	if err != nil {
		if !resp.successful() {
			return resp, &StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status, Err: err}
		}
		return resp, err
	}

	if fault := resp.Fault(); fault != nil {
		return resp, fault
	}

	if !resp.successful() {
		return resp, &StatusError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
	}

	return resp, nil
}
