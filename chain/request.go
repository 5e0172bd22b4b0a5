package chain

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoBody is returned by body accessors when the request carries no body.
var ErrNoBody = errors.New("chain: request has no body")

// Request is the canonical request representation passed through a chain.
// Headers use http.Header semantics (case-insensitive keys, multi-valued).
// The body is memoized on first read, so Bytes, Text and JSON may be called
// repeatedly and in any combination.
type Request struct {
	method     string
	url        *url.URL
	rawURL     string
	header     http.Header
	remoteAddr string

	body     io.Reader
	bodyBuf  []byte
	bodyErr  error
	bodyRead bool
}

// RequestOption configures a canonical Request.
type RequestOption func(*Request)

// WithHeader sets a request header, replacing any existing values.
func WithHeader(name, value string) RequestOption {
	return func(r *Request) {
		r.header.Set(name, value)
	}
}

// WithHeaders merges the given headers into the request.
func WithHeaders(h http.Header) RequestOption {
	return func(r *Request) {
		for k, vals := range h {
			for _, v := range vals {
				r.header.Add(k, v)
			}
		}
	}
}

// WithBody sets the request body source. The reader is consumed at most once;
// the raw bytes are retained for subsequent reads.
func WithBody(body io.Reader) RequestOption {
	return func(r *Request) {
		r.body = body
	}
}

// WithBodyBytes sets the request body from a byte slice.
func WithBodyBytes(b []byte) RequestOption {
	return func(r *Request) {
		r.bodyBuf = b
		r.bodyRead = true
	}
}

// WithRemoteAddr records the network address the request arrived from.
func WithRemoteAddr(addr string) RequestOption {
	return func(r *Request) {
		r.remoteAddr = addr
	}
}

// NewRequest constructs a canonical request. The raw URL is parsed leniently;
// a malformed URL leaves only the raw form available.
func NewRequest(method, rawURL string, opts ...RequestOption) *Request {
	r := &Request{
		method: strings.ToUpper(method),
		rawURL: rawURL,
		header: make(http.Header),
	}
	if u, err := url.Parse(rawURL); err == nil {
		r.url = u
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Method returns the upper-cased HTTP method.
func (r *Request) Method() string { return r.method }

// URL returns the raw request URL.
func (r *Request) URL() string { return r.rawURL }

// Path returns the URL path, or the raw URL if it did not parse.
func (r *Request) Path() string {
	if r.url == nil {
		return r.rawURL
	}
	return r.url.Path
}

// Query returns the first query parameter value for name.
func (r *Request) Query(name string) string {
	if r.url == nil {
		return ""
	}
	return r.url.Query().Get(name)
}

// Header returns the request headers. Mutating the returned map is visible to
// later middleware; the canonical model treats request headers as read-mostly.
func (r *Request) Header() http.Header { return r.header }

// RemoteAddr returns the transport-level peer address, if the adapter
// recorded one.
func (r *Request) RemoteAddr() string { return r.remoteAddr }

// Bytes returns the raw request body, reading and memoizing the underlying
// source on first call.
func (r *Request) Bytes() ([]byte, error) {
	if !r.bodyRead {
		r.bodyRead = true
		if r.body == nil {
			r.bodyErr = ErrNoBody
		} else {
			r.bodyBuf, r.bodyErr = io.ReadAll(r.body)
			if c, ok := r.body.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
	if r.bodyErr != nil {
		return nil, r.bodyErr
	}
	if r.bodyBuf == nil {
		return nil, ErrNoBody
	}
	return r.bodyBuf, nil
}

// Text returns the request body as a string.
func (r *Request) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSON decodes the request body into v.
func (r *Request) JSON(v any) error {
	b, err := r.Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HasBody reports whether a body source or buffer is present.
func (r *Request) HasBody() bool {
	return r.body != nil || len(r.bodyBuf) > 0
}

// BodyConsumed reports whether the body source has been read into the
// memoized buffer. Adapters use this to rearm the native body before
// pass-through.
func (r *Request) BodyConsumed() bool {
	return r.bodyRead
}

// ContentLength returns the body length when already known: either the
// memoized buffer size or the declared Content-Length header. Returns -1 when
// unknown.
func (r *Request) ContentLength() int64 {
	if r.bodyRead && r.bodyErr == nil {
		return int64(len(r.bodyBuf))
	}
	if cl := r.header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return -1
}
