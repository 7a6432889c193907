package zuora

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel/trace"

	"github.com/sendgrid/zuora/soap"
)

const (
	// TrackIDHeader carries a per-call identifier that Zuora support can trace.
	TrackIDHeader = "Zuora-Track-Id"

	userAgent = "sendgrid-zuora-go"

	faultInvalidSession = "INVALID_SESSION"
)

// Client is a handle to the Zuora SOAP API.
//
// The SOAP transport is built lazily from the current Config on first use and
// rebuilt after Configure. Every operation returns a *Fault on failure. No call
// is ever retried. A Client is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	config  Config
	gen     uint64
	binding *binding
	session *Session
}

// binding is the transport built from one Config generation. It is never mutated.
type binding struct {
	gen      uint64
	soap     *soap.Client
	endpoint string
	username string
	password string
	logger   hclog.Logger
	tracer   trace.Tracer
}

// New returns a Client for cfg. Nothing is read or sent until the first call.
func New(cfg Config) *Client {
	c := &Client{}
	c.Configure(cfg)
	return c
}

// Configure replaces the client's configuration. The transport is rebuilt and
// the session dropped on the next call.
func (c *Client) Configure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = cfg
	c.gen++
	c.binding = nil
	c.session = nil
}

// Config returns the current configuration.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// Authenticated reports whether a login has succeeded since the last Configure.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Active()
}

// Session returns a copy of the current session, or nil before a successful login.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Endpoint returns the SOAP endpoint declared by the configured WSDL.
func (c *Client) Endpoint(ctx context.Context) (string, error) {
	b, err := c.bind(ctx)
	if err != nil {
		return "", err
	}
	return b.endpoint, nil
}

// Authenticate logs in with the configured credentials. On success the session
// is kept and later calls are sent to the server URL Zuora returned.
func (c *Client) Authenticate(ctx context.Context) error {
	_, _, err := c.authenticate(ctx)
	return err
}

// Request calls a SOAP operation by name and returns the first element of the
// response body. Arguments must marshal to XML elements (see Param) or be RawXML.
// The client logs in first if it has no session.
func (c *Client) Request(ctx context.Context, operation string, args ...interface{}) (*Payload, error) {
	payload := &Payload{}
	if err := c.Do(ctx, operation, newOperation(operation, args), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Do calls a SOAP operation with a typed body and decodes the response body into resp.
// body must carry its own XMLName. The client logs in first if it has no session.
// An INVALID_SESSION fault drops the session so the next call logs in again.
func (c *Client) Do(ctx context.Context, operation string, body, resp interface{}) error {
	b, s, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	if err := b.call(ctx, operation, s.endpoint(b.endpoint), s, body, resp); err != nil {
		if f, ok := AsFault(err); ok && f.Code == faultInvalidSession {
			c.dropSession(s)
		}
		return err
	}
	return nil
}

// Query runs a ZOQL query and returns the first page of results.
func (c *Client) Query(ctx context.Context, zoql string) (*QueryResult, error) {
	var resp queryResponse
	if err := c.Do(ctx, "query", &queryRequest{QueryString: zoql}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// QueryMore fetches the page following the one that returned locator.
func (c *Client) QueryMore(ctx context.Context, locator string) (*QueryResult, error) {
	var resp queryResponse
	if err := c.Do(ctx, "queryMore", &queryMoreRequest{QueryLocator: locator}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Logout ends the current session. It does nothing when there is no session.
// The local session is dropped even if Zuora reports a fault.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	b, s := c.binding, c.session
	c.mu.Unlock()

	if b == nil || !s.Active() {
		return nil
	}

	err := b.call(ctx, "logout", s.endpoint(b.endpoint), s, &logoutRequest{}, &Payload{})
	c.dropSession(s)
	return err
}

func (c *Client) authenticate(ctx context.Context) (*binding, *Session, error) {
	b, err := c.bind(ctx)
	if err != nil {
		return nil, nil, err
	}

	if b.username == "" || b.password == "" {
		return nil, nil, b.fail(newClientFault("login", ErrMissingCredentials))
	}

	var resp loginResponse
	req := &loginRequest{Username: b.username, Password: b.password}
	if err := b.call(ctx, "login", b.endpoint, nil, req, &resp); err != nil {
		return nil, nil, err
	}

	if resp.Result.Session == "" {
		return nil, nil, b.fail(&Fault{
			Origin:    OriginServer,
			Operation: "login",
			Message:   ErrNoSession.Error(),
			Err:       ErrNoSession,
		})
	}

	s := &Session{Key: resp.Result.Session, ServerURL: resp.Result.ServerURL}

	c.mu.Lock()
	if c.gen == b.gen {
		c.session = s
	}
	c.mu.Unlock()

	b.logger.Info("authenticated", "endpoint", s.endpoint(b.endpoint))
	return b, s, nil
}

func (c *Client) ensureSession(ctx context.Context) (*binding, *Session, error) {
	c.mu.Lock()
	b, s := c.binding, c.session
	c.mu.Unlock()

	if b != nil && s.Active() {
		return b, s, nil
	}
	return c.authenticate(ctx)
}

func (c *Client) dropSession(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == s {
		c.session = nil
	}
}

// bind returns the transport for the current configuration, building it if needed.
// The WSDL is read without holding the lock.
func (c *Client) bind(ctx context.Context) (*binding, error) {
	c.mu.Lock()
	if c.binding != nil {
		b := c.binding
		c.mu.Unlock()
		return b, nil
	}
	cfg, gen := c.config, c.gen
	c.mu.Unlock()

	b, err := newBinding(ctx, cfg, gen)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// Reconfigured while we were reading the WSDL; serve this call but don't cache.
		return b, nil
	}
	if c.binding == nil {
		c.binding = b
	}
	return c.binding, nil
}

func newBinding(ctx context.Context, cfg Config, gen uint64) (*binding, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}

	source := ResolveWSDL(cfg)
	endpoint, err := source.Endpoint(ctx, httpClient)
	if err != nil {
		f := &Fault{
			Origin:    OriginTransport,
			Operation: "wsdl",
			Message:   err.Error(),
			Err:       err,
		}
		logger.Warn("resolving endpoint failed", "wsdl", source.String(), "error", f.Message)
		return nil, f
	}
	logger.Debug("resolved endpoint", "wsdl", source.String(), "endpoint", endpoint)

	return &binding{
		gen:      gen,
		soap:     soap.NewClient(httpClient),
		endpoint: endpoint,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
		tracer:   newTracer(cfg.TracerProvider),
	}, nil
}

// call sends one SOAP operation. Failures come back as a logged *Fault.
func (b *binding) call(ctx context.Context, operation, endpoint string, session *Session, body, resp interface{}) error {
	trackID := uuid.NewString()
	ctx, span := startCallSpan(ctx, b.tracer, operation, endpoint, trackID)

	req := soap.NewRequest(operation, endpoint, body, resp, &apiFault{})
	if session.Active() {
		req.AddHeader(&sessionHeader{Session: session.Key})
	}
	req.Header().Set(TrackIDHeader, trackID)
	req.Header().Set("User-Agent", userAgent)
	injectTraceHeaders(ctx, req.Header())

	b.logger.Debug("calling operation", "operation", operation, "endpoint", endpoint, "track_id", trackID)

	if _, err := b.soap.Do(ctx, req); err != nil {
		f := b.fail(newFault(operation, err), "track_id", trackID)
		endCallSpan(span, f)
		return f
	}

	endCallSpan(span, nil)
	return nil
}

func (b *binding) fail(f *Fault, args ...interface{}) *Fault {
	args = append([]interface{}{
		"operation", f.Operation,
		"origin", f.Origin.String(),
		"code", f.Code,
		"error", f.Message,
	}, args...)
	b.logger.Warn("operation failed", args...)
	return f
}
