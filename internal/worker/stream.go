package worker

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrBroken is returned once a Client's stream is out of sync.
var ErrBroken = errors.New("worker: stream broken")

// Serve answers framed requests from r on w until r reaches EOF or ctx is
// done. Each request is handled to completion before the next is read.
func Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := NewFrameDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := dec.ReadFrame()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := WriteFrame(w, handlePayload(payload)); err != nil {
			return err
		}
	}
}

// Client sends framed requests over a stream and reads one response per
// request. Calls are serialized.
type Client struct {
	mu     sync.Mutex
	dec    *FrameDecoder
	w      io.Writer
	closer io.Closer
	broken bool
}

// NewClient creates a client reading responses from r and writing
// requests to w. If r is an io.Closer the client closes it once the
// stream breaks, which releases a read still waiting on the peer. Callers
// passing a plain reader must end the stream themselves.
func NewClient(r io.Reader, w io.Writer) *Client {
	c := &Client{dec: NewFrameDecoder(r), w: w}
	if rc, ok := r.(io.Closer); ok {
		c.closer = rc
	}
	return c
}

// Close closes the response stream and marks the client broken.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markBroken()
}

func (c *Client) markBroken() error {
	if c.broken {
		return nil
	}
	c.broken = true
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

type roundTrip struct {
	resp *Response
	err  error
}

// Dispatch sends req and waits for the matching response. If ctx ends
// first the client is marked broken, since the pending response would
// desynchronize the stream.
func (c *Client) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return nil, ErrBroken
	}

	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to encode request", Err: err}
	}

	done := make(chan roundTrip, 1)
	go func() {
		if err := WriteFrame(c.w, payload); err != nil {
			done <- roundTrip{err: err}
			return
		}
		out, err := c.dec.ReadFrame()
		if err != nil {
			done <- roundTrip{err: err}
			return
		}
		resp, err := decodeResponse(out, req.ID)
		done <- roundTrip{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = c.markBroken()
		return nil, ctx.Err()
	case rt := <-done:
		if rt.err != nil {
			_ = c.markBroken()
		}
		return rt.resp, rt.err
	}
}
