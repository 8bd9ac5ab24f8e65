// Package worker runs detection outside the caller's goroutine.
//
// Requests and responses cross the worker boundary as msgpack payloads, so
// a worker never shares memory with its caller. The same detect.Run is
// executed on both sides of the boundary.
package worker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"sprite-detector/internal/detect"
	"sprite-detector/internal/pixel"
)

// Request asks a worker to detect sprites in one pixel buffer.
type Request struct {
	ID     string        `msgpack:"id"`
	Width  int           `msgpack:"width"`
	Height int           `msgpack:"height"`
	Pixels []byte        `msgpack:"pixels"`
	Config detect.Config `msgpack:"config"`
}

// Response carries either frames and stats or a failure description.
type Response struct {
	ID         string         `msgpack:"id"`
	Success    bool           `msgpack:"success"`
	Frames     []detect.Frame `msgpack:"frames"`
	Stats      detect.Stats   `msgpack:"stats"`
	Error      string         `msgpack:"error,omitempty"`
	ErrorKind  detect.Kind    `msgpack:"error_kind,omitempty"`
	ErrorField string         `msgpack:"error_field,omitempty"`
	ErrorValue string         `msgpack:"error_value,omitempty"`
}

// NewRequest builds a request with a fresh id. Pixels alias buf.Pix until
// the request is encoded.
func NewRequest(buf *pixel.Buffer, cfg detect.Config) *Request {
	return &Request{
		ID:     uuid.NewString(),
		Width:  buf.Width,
		Height: buf.Height,
		Pixels: buf.Pix,
		Config: cfg,
	}
}

// Result converts a response into the values detect.Run would return.
func (r *Response) Result() (detect.Result, error) {
	if !r.Success {
		return detect.Result{}, &detect.Error{Kind: r.ErrorKind, Field: r.ErrorField, Value: r.ErrorValue, Msg: r.Error}
	}
	frames := r.Frames
	if frames == nil {
		frames = []detect.Frame{}
	}
	return detect.Result{Frames: frames, Stats: r.Stats}, nil
}

// Handle runs one request in the current goroutine.
func Handle(req *Request) *Response {
	resp := &Response{ID: req.ID}

	buf, err := pixel.FromPix(req.Width, req.Height, req.Pixels)
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorKind = detect.KindProcessing
		return resp
	}

	res, err := detect.Run(buf, req.Config)
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorKind = detect.KindProcessing
		var de *detect.Error
		if errors.As(err, &de) {
			resp.Error = de.Msg
			if de.Err != nil {
				resp.Error = fmt.Sprintf("%s: %v", de.Msg, de.Err)
			}
			resp.ErrorKind = de.Kind
			resp.ErrorField = de.Field
			if de.Field != "" {
				resp.ErrorValue = fmt.Sprint(de.Value)
			}
		}
		return resp
	}

	resp.Success = true
	resp.Frames = res.Frames
	resp.Stats = res.Stats
	return resp
}

// handlePayload decodes, runs and encodes one request. Failures to decode
// are reported inside the response rather than returned.
func handlePayload(payload []byte) []byte {
	var req Request
	var resp *Response
	if err := msgpack.Unmarshal(payload, &req); err != nil {
		resp = &Response{Error: fmt.Sprintf("decode request: %v", err), ErrorKind: detect.KindWorker}
	} else {
		resp = Handle(&req)
	}

	out, err := msgpack.Marshal(resp)
	if err != nil {
		out, _ = msgpack.Marshal(&Response{ID: req.ID, Error: fmt.Sprintf("encode response: %v", err), ErrorKind: detect.KindWorker})
	}
	return out
}

func decodeResponse(payload []byte, wantID string) (*Response, error) {
	var resp Response
	if err := msgpack.Unmarshal(payload, &resp); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode response", Err: err}
	}
	if resp.ID != wantID {
		return nil, fmt.Errorf("worker: response id %q does not match request %q", resp.ID, wantID)
	}
	return &resp, nil
}
