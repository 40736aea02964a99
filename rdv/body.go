package rdv

import (
	"bytes"
	"io"
)

// Body is the tagged union every endpoint handler returns: either a static
// byte blob (home, client.js, favicon, error text) or a live Forwarder
// streaming an uploader's bytes through to a downloader. Unifying both
// behind one interface lets the dispatcher write every response the same
// way, via io.Copy, regardless of which case it got.
type Body interface {
	io.Reader
	ContentLength() int64
}

type staticBody struct {
	*bytes.Reader
	length int64
}

// NewStaticBody wraps a fixed byte blob as a Body.
func NewStaticBody(data []byte) Body {
	return &staticBody{Reader: bytes.NewReader(data), length: int64(len(data))}
}

func (b *staticBody) ContentLength() int64 { return b.length }

// ContentLength makes *Forwarder satisfy Body alongside its Read method.
func (f *Forwarder) ContentLength() int64 { return int64(f.length) }
