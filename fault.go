package zuora

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sendgrid/zuora/soap"
)

var (
	// ErrMissingCredentials is returned by Authenticate when the username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrNoSession is returned when a login response carries no session key.
	ErrNoSession = errors.New("login response did not include a session")
)

// Origin tells where a Fault came from.
type Origin int

const (
	// OriginTransport means no usable response came back: network and I/O errors,
	// WSDL read failures and undecodable responses.
	OriginTransport Origin = iota
	// OriginServer means Zuora answered with a SOAP fault or an error status.
	OriginServer
	// OriginClient means the call was refused before anything was sent.
	OriginClient
)

func (o Origin) String() string {
	switch o {
	case OriginTransport:
		return "transport"
	case OriginServer:
		return "server"
	case OriginClient:
		return "client"
	default:
		return "Origin(" + strconv.Itoa(int(o)) + ")"
	}
}

// Fault is the only error kind returned by Client operations.
type Fault struct {
	Origin Origin
	// Operation is the SOAP operation that failed, such as "login".
	Operation string
	// Code is Zuora's fault code (INVALID_VALUE, INVALID_SESSION, ...), the SOAP
	// faultcode when no detail was sent, or the HTTP status code.
	Code    string
	Message string
	// Err is the underlying cause.
	Err error
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	if f.Code != "" {
		return fmt.Sprintf("zuora: %s: %s: %s", f.Operation, f.Code, msg)
	}
	return fmt.Sprintf("zuora: %s: %s", f.Operation, msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// AsFault reports whether err is, or wraps, a *Fault and returns it.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// apiFault is the detail element Zuora attaches to its SOAP faults,
// for example fns:LoginFault or fns:UnexpectedErrorFault.
type apiFault struct {
	FaultCode    string `xml:"FaultCode"`
	FaultMessage string `xml:"FaultMessage"`
}

// newFault normalizes any error from the soap layer into a *Fault.
func newFault(operation string, err error) *Fault {
	if f, ok := AsFault(err); ok {
		return f
	}

	var (
		soapFault *soap.Fault
		statusErr *soap.StatusError
		encodeErr *soap.EncodeError
	)
	switch {
	case errors.As(err, &soapFault):
		f := &Fault{
			Origin:    OriginServer,
			Operation: operation,
			Code:      soapFault.LocalCode(),
			Message:   soapFault.String,
			Err:       err,
		}
		if detail, ok := soapFault.Detail().(*apiFault); ok {
			if detail.FaultCode != "" {
				f.Code = detail.FaultCode
			}
			if detail.FaultMessage != "" {
				f.Message = detail.FaultMessage
			}
		}
		return f
	case errors.As(err, &statusErr):
		return &Fault{
			Origin:    OriginServer,
			Operation: operation,
			Code:      strconv.Itoa(statusErr.StatusCode),
			Message:   statusErr.Status,
			Err:       err,
		}
	case errors.As(err, &encodeErr):
		return newClientFault(operation, err)
	default:
		return &Fault{
			Origin:    OriginTransport,
			Operation: operation,
			Message:   err.Error(),
			Err:       err,
		}
	}
}

func newClientFault(operation string, err error) *Fault {
	return &Fault{
		Origin:    OriginClient,
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}
