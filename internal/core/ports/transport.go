package ports

import "context"

// Request describes one call to the evaluation service. Route is the path
// template used to label metrics (e.g. "/users/{id}").
type Request struct {
	Method string
	Path   string
	Route  string
	Body   any
}

// Transport issues requests against the evaluation service. Do attaches
// the session's bearer credential; DoPublic never does. A nil out
// discards the response body.
type Transport interface {
	Do(ctx context.Context, req Request, out any) error
	DoPublic(ctx context.Context, req Request, out any) error
}
