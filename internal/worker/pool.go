package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("worker: pool closed")

type job struct {
	payload []byte
	reply   chan []byte
}

// Pool runs requests on a fixed set of goroutines.
type Pool struct {
	jobs      chan job
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPool starts workers goroutines; non-positive means runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		jobs: make(chan job, workers*2),
		done: make(chan struct{}),
	}
	for w := 0; w < workers; w++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.done:
					p.drain()
					return
				case j := <-p.jobs:
					j.reply <- handlePayload(j.payload)
				}
			}
		}()
	}
	return p
}

// Dispatch sends req to a worker and waits for its response.
// Returning without a response abandons the request; the worker still
// finishes it.
func (p *Pool) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}

	payload, err := msgpack.Marshal(req)
	if err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to encode request", Err: err}
	}

	j := job{payload: payload, reply: make(chan []byte, 1)}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrClosed
	case p.jobs <- j:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-j.reply:
		return p.reply(out, req.ID)
	case <-p.done:
		select {
		case out := <-j.reply:
			return p.reply(out, req.ID)
		default:
			return nil, ErrClosed
		}
	}
}

// reply decodes a worker answer; nil means the job was dropped by Close.
func (p *Pool) reply(out []byte, id string) (*Response, error) {
	if out == nil {
		return nil, ErrClosed
	}
	return decodeResponse(out, id)
}

// drain answers every queued job with a nil reply.
func (p *Pool) drain() {
	for {
		select {
		case j := <-p.jobs:
			j.reply <- nil
		default:
			return
		}
	}
}

// Close stops the workers after their current request. Requests still
// queued, and callers waiting on them, get ErrClosed.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
	return nil
}
