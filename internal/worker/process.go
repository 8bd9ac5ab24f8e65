package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process runs requests in a child process speaking the frame protocol
// on its stdin and stdout, typically `spritedetect worker`. The child is
// started on first use and restarted after a transport failure.
type Process struct {
	Path string
	Args []string
	Env  []string // nil inherits the parent's environment

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	client *Client
}

// NewProcess describes a worker command without starting it.
func NewProcess(path string, args ...string) *Process {
	return &Process{Path: path, Args: args}
}

func (p *Process) start() error {
	cmd := exec.Command(p.Path, p.Args...)
	cmd.Env = p.Env
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("worker: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("worker: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("worker: start %s: %w", p.Path, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.client = NewClient(stdout, stdin)
	return nil
}

// Dispatch sends req to the child process, starting it if needed.
func (p *Process) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		if err := p.start(); err != nil {
			return nil, err
		}
	}

	resp, err := p.client.Dispatch(ctx, req)
	if err != nil {
		_ = p.stop(true)
		return nil, err
	}
	return resp, nil
}

// Close shuts the child process down.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop(false)
}

// stop ends the child. A killed child may be mid-request.
func (p *Process) stop(kill bool) error {
	if p.cmd == nil {
		return nil
	}
	cmd := p.cmd
	p.cmd, p.client = nil, nil

	_ = p.stdin.Close()
	if kill {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("worker: %s exited: %w", p.Path, err)
	}
	return nil
}
