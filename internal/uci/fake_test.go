package uci

import (
	"context"
	"io"
	"strings"
	"sync"
)

// fakeEngine is a scripted Transport. Each command sent is recorded and
// handed to respond, which may emit output lines.
type fakeEngine struct {
	mu       sync.Mutex
	sent     []string
	out      chan string
	closed   chan struct{}
	once     sync.Once
	startErr error
	respond  func(f *fakeEngine, cmd string)
}

func newFakeEngine(respond func(f *fakeEngine, cmd string)) *fakeEngine {
	return &fakeEngine{
		out:     make(chan string, 1024),
		closed:  make(chan struct{}),
		respond: respond,
	}
}

func (f *fakeEngine) Start(ctx context.Context) error {
	return f.startErr
}

func (f *fakeEngine) SendLine(line string) error {
	select {
	case <-f.closed:
		return io.ErrClosedPipe
	default:
	}
	f.mu.Lock()
	f.sent = append(f.sent, line)
	f.mu.Unlock()
	if f.respond != nil {
		f.respond(f, line)
	}
	return nil
}

func (f *fakeEngine) ReadLine() (string, error) {
	select {
	case line := <-f.out:
		return line, nil
	case <-f.closed:
		return "", io.EOF
	}
}

func (f *fakeEngine) Shutdown() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// emit queues output lines.
func (f *fakeEngine) emit(lines ...string) {
	for _, l := range lines {
		f.out <- l
	}
}

// hangUp ends the output stream as if the engine crashed.
func (f *fakeEngine) hangUp() {
	f.once.Do(func() { close(f.closed) })
}

// commands returns a copy of everything sent so far.
func (f *fakeEngine) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// sentCount counts commands with the given prefix.
func (f *fakeEngine) sentCount(prefix string) int {
	n := 0
	for _, c := range f.commands() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// handshakeOnly answers the startup handshake and nothing else.
func handshakeOnly(f *fakeEngine, cmd string) {
	switch cmd {
	case "uci":
		f.emit("id name Fakefish", "id author test", "option name Hash type spin default 16 min 1 max 33554432", "uciok")
	case "isready":
		f.emit("readyok")
	}
}

// scripted answers the handshake and replies to each "go" with search.
func scripted(search ...string) func(f *fakeEngine, cmd string) {
	return func(f *fakeEngine, cmd string) {
		handshakeOnly(f, cmd)
		if strings.HasPrefix(cmd, "go") {
			f.emit(search...)
		}
	}
}
