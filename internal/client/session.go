package client

// Session owns the bearer token for one signed-in user. It is created empty,
// armed by Client.Login and torn down by Clear; the Client it is injected
// into attaches the token to every request while the session is active.
type Session struct {
	token string
}

// NewSession creates an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// SetToken arms the session with a bearer token.
func (s *Session) SetToken(token string) {
	s.token = token
}

// Token returns the current bearer token, empty when signed out.
func (s *Session) Token() string {
	return s.token
}

// Active reports whether the session holds a token.
func (s *Session) Active() bool {
	return s.token != ""
}

// Clear tears the session down. Subsequent requests go out unauthenticated.
func (s *Session) Clear() {
	s.token = ""
}
