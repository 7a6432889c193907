package zuora

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const (
	stagingWSDL     = "testdata/staging.wsdl"
	stagingEndpoint = "https://services33.zuora.com/apps/services/a/48.0"

	testUsername   = "api-user@example.com"
	testPassword   = "s3cret-Passw0rd"
	testSessionKey = "2pM6Yx0Xq1uKsIv8qd3UPBS8mTRvPQ4Y"
)

type recordedCall struct {
	Path   string
	Action string
	Header http.Header
	Body   string
}

type mockReply struct {
	status  int
	fixture string
}

// mockZuora answers SOAP calls with fixtures from testdata/responses, keyed by SOAPAction.
type mockZuora struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	replies map[string]mockReply
	calls   []recordedCall
}

func newMockZuora(t *testing.T) *mockZuora {
	t.Helper()
	m := &mockZuora{
		t: t,
		replies: map[string]mockReply{
			"login":     {http.StatusOK, "valid_login.xml"},
			"logout":    {http.StatusOK, "logout.xml"},
			"query":     {http.StatusOK, "query.xml"},
			"queryMore": {http.StatusOK, "query_more.xml"},
			"example":   {http.StatusOK, "example.xml"},
		},
	}
	m.srv = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockZuora) reply(action string, status int, fixture string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[action] = mockReply{status: status, fixture: fixture}
}

func (m *mockZuora) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		m.t.Errorf("reading request body: %v", err)
	}
	action := r.Header.Get("SOAPAction")

	m.mu.Lock()
	m.calls = append(m.calls, recordedCall{
		Path:   r.URL.Path,
		Action: action,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	reply, ok := m.replies[action]
	m.mu.Unlock()

	if !ok {
		http.Error(w, "no such operation: "+action, http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(filepath.Join("testdata", "responses", reply.fixture))
	if err != nil {
		m.t.Errorf("reading fixture: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	data = bytes.ReplaceAll(data, []byte("{{server}}"), []byte(m.sessionURL()))

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(reply.status)
	w.Write(data)
}

// loginURL is the address the generated WSDL declares.
func (m *mockZuora) loginURL() string {
	return m.srv.URL + "/soap"
}

// sessionURL is the ServerUrl handed out by a successful login.
func (m *mockZuora) sessionURL() string {
	return m.srv.URL + "/session"
}

// wsdl writes a copy of the staging WSDL that points at the mock server.
func (m *mockZuora) wsdl() string {
	m.t.Helper()
	data, err := os.ReadFile(stagingWSDL)
	if err != nil {
		m.t.Fatalf("reading WSDL: %v", err)
	}
	data = bytes.ReplaceAll(data, []byte(stagingEndpoint), []byte(m.loginURL()))

	path := filepath.Join(m.t.TempDir(), "zuora.wsdl")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		m.t.Fatalf("writing WSDL: %v", err)
	}
	return path
}

func (m *mockZuora) config() Config {
	return Config{
		Username:   testUsername,
		Password:   testPassword,
		WSDL:       m.wsdl(),
		HTTPClient: m.srv.Client(),
	}
}

func (m *mockZuora) Calls() []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedCall(nil), m.calls...)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
