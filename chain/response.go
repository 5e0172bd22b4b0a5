package chain

import (
	"encoding/json"
	"net/http"
)

// BodyKind describes the representation of a response body.
type BodyKind int

const (
	// KindNone marks a response without a body.
	KindNone BodyKind = iota
	// KindText marks a plain text body.
	KindText
	// KindJSON marks a JSON body.
	KindJSON
	// KindBinary marks an opaque binary body.
	KindBinary
)

// String returns the kind name for logging.
func (k BodyKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindJSON:
		return "json"
	case KindBinary:
		return "binary"
	default:
		return "none"
	}
}

// ResponseBuilder accumulates the canonical response for one execution.
// Setters are chainable; Build freezes the accumulated state into an
// immutable Response snapshot.
type ResponseBuilder struct {
	status    int
	statusSet bool
	header    http.Header
	body      []byte
	jsonValue any
	kind      BodyKind

	built    *Response
	buildErr error
}

// NewResponseBuilder returns a builder with status 200 and empty headers.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{
		status: http.StatusOK,
		header: make(http.Header),
	}
}

func (b *ResponseBuilder) invalidate() {
	b.built = nil
	b.buildErr = nil
}

// SetStatus sets the response status code.
func (b *ResponseBuilder) SetStatus(code int) *ResponseBuilder {
	b.status = code
	b.statusSet = true
	b.invalidate()
	return b
}

// SetHeader sets a response header, replacing existing values.
func (b *ResponseBuilder) SetHeader(name, value string) *ResponseBuilder {
	b.header.Set(name, value)
	b.invalidate()
	return b
}

// AddHeader appends a response header value. Use for multi-valued headers
// such as Set-Cookie.
func (b *ResponseBuilder) AddHeader(name, value string) *ResponseBuilder {
	b.header.Add(name, value)
	b.invalidate()
	return b
}

// Header returns the live header map. Accessing it invalidates any cached
// snapshot, since callers may mutate the map directly instead of going
// through SetHeader or AddHeader.
func (b *ResponseBuilder) Header() http.Header {
	b.invalidate()
	return b.header
}

// Status returns the current status code.
func (b *ResponseBuilder) Status() int { return b.status }

// JSON sets a JSON body. Serialization is deferred to Build so the setter
// stays chainable; Content-Type is set to application/json only when the
// middleware did not set one explicitly.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.jsonValue = v
	b.body = nil
	b.kind = KindJSON
	b.invalidate()
	return b
}

// Text sets a plain text body and, unless already set, a text/plain
// Content-Type.
func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.body = []byte(s)
	b.jsonValue = nil
	b.kind = KindText
	b.invalidate()
	return b
}

// Blob sets a binary body with the given content type.
func (b *ResponseBuilder) Blob(contentType string, data []byte) *ResponseBuilder {
	b.body = data
	b.jsonValue = nil
	b.kind = KindBinary
	if contentType != "" {
		b.header.Set("Content-Type", contentType)
	}
	b.invalidate()
	return b
}

// Written reports whether the builder carries renderable content: a body of
// any kind, or an explicitly set status. Header-only mutation does not count,
// so annotating middleware (CORS and friends) does not defeat pass-through.
func (b *ResponseBuilder) Written() bool {
	return b.kind != KindNone || b.statusSet
}

// Build freezes the current builder state into a Response snapshot. Building
// is idempotent: repeated calls without intervening mutation return the same
// snapshot without re-serializing. A setter call invalidates the snapshot so
// unwind-phase mutation after an inner Build is still observed.
func (b *ResponseBuilder) Build() (*Response, error) {
	if b.built != nil || b.buildErr != nil {
		return b.built, b.buildErr
	}

	body := b.body
	if b.kind == KindJSON {
		data, err := json.Marshal(b.jsonValue)
		if err != nil {
			b.buildErr = err
			return nil, err
		}
		body = data
	}

	header := b.header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if header.Get("Content-Type") == "" {
		switch b.kind {
		case KindJSON:
			header.Set("Content-Type", "application/json")
		case KindText:
			header.Set("Content-Type", "text/plain; charset=utf-8")
		}
	}

	b.built = &Response{
		status:  b.status,
		header:  header,
		body:    body,
		kind:    b.kind,
		written: b.Written(),
	}
	return b.built, nil
}

// Response is an immutable snapshot of a built response. It is safe to
// inspect and render repeatedly.
type Response struct {
	status  int
	header  http.Header
	body    []byte
	kind    BodyKind
	written bool
}

// Status returns the response status code.
func (r *Response) Status() int { return r.status }

// Header returns the response headers. Callers must not mutate the map.
func (r *Response) Header() http.Header { return r.header }

// Body returns the serialized response body.
func (r *Response) Body() []byte { return r.body }

// Kind returns the body representation.
func (r *Response) Kind() BodyKind { return r.kind }

// HasContent reports whether the snapshot carries a body.
func (r *Response) HasContent() bool { return r.kind != KindNone }

// Written reports whether the execution produced renderable output: a body,
// or an explicitly set status code. Adapters use this to decide between
// rendering and pass-through.
func (r *Response) Written() bool { return r.written }
