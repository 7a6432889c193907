package zuora

// Session is the result of a successful login.
type Session struct {
	// Key is sent in the SessionHeader of every later call.
	Key string
	// ServerURL is the endpoint Zuora asked later calls to use.
	ServerURL string
}

// Active reports whether the session carries a key.
func (s *Session) Active() bool {
	return s != nil && s.Key != ""
}

// endpoint returns the URL calls in this session go to.
func (s *Session) endpoint(fallback string) string {
	if s == nil || s.ServerURL == "" {
		return fallback
	}
	return s.ServerURL
}
