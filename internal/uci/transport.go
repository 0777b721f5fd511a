package uci

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/lgbarn/gambit/internal/errors"
)

// Transport is a line-oriented connection to an engine. ReadLine blocks
// until a line is available and returns io.EOF once the engine is gone.
type Transport interface {
	Start(ctx context.Context) error
	SendLine(line string) error
	ReadLine() (string, error)
	Shutdown() error
}

// defaultExitGrace is how long Shutdown waits for the engine to exit on its
// own before killing it.
const defaultExitGrace = time.Second

// ProcessTransport runs an engine binary and talks to it over stdin/stdout.
type ProcessTransport struct {
	path      string
	args      []string
	exitGrace time.Duration

	mu  sync.Mutex
	cmd *exec.Cmd
	in  io.WriteCloser
	out *bufio.Scanner
}

// NewProcessTransport returns a transport for the engine at path.
func NewProcessTransport(path string, args ...string) *ProcessTransport {
	return &ProcessTransport{path: path, args: args, exitGrace: defaultExitGrace}
}

// Start launches the engine process. The context only bounds the launch.
func (t *ProcessTransport) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(t.path, t.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errors.Wrap(err, "engine stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "engine stdout")
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", t.path)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	t.mu.Lock()
	t.cmd = cmd
	t.in = stdin
	t.out = scanner
	t.mu.Unlock()
	return nil
}

// SendLine writes one command followed by a newline.
func (t *ProcessTransport) SendLine(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.in == nil {
		return io.ErrClosedPipe
	}
	_, err := io.WriteString(t.in, line+"\n")
	return err
}

// ReadLine returns the next line of engine output.
func (t *ProcessTransport) ReadLine() (string, error) {
	t.mu.Lock()
	out := t.out
	t.mu.Unlock()
	if out == nil {
		return "", io.EOF
	}
	if out.Scan() {
		return out.Text(), nil
	}
	if err := out.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Shutdown closes stdin, which makes a well-behaved engine exit, and waits
// up to the exit grace for it to do so. An engine still running after that
// is killed. The process is always reaped.
func (t *ProcessTransport) Shutdown() error {
	t.mu.Lock()
	cmd, in := t.cmd, t.in
	t.cmd, t.in = nil, nil
	t.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if in != nil {
		_ = in.Close()
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	grace := time.NewTimer(t.exitGrace)
	defer grace.Stop()

	var err error
	select {
	case err = <-exited:
	case <-grace.C:
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		err = <-exited
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
