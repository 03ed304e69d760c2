// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/reload/internal/identity"
)

// PlayerCall is one directive received by [MockPlayer].
type PlayerCall struct {
	Op      string // load, play, pause or volume
	Seq     uint64
	VideoID string
	Volume  int
}

// MockPlayer records player directives. When AutoReady is set, every load is acknowledged
// through Ready on a new goroutine.
type MockPlayer struct {
	mu        sync.Mutex
	calls     []PlayerCall
	AutoReady bool
	Ready     func(seq uint64)
}

func (m *MockPlayer) record(c PlayerCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *MockPlayer) Load(seq uint64, videoID string) {
	m.record(PlayerCall{Op: "load", Seq: seq, VideoID: videoID})
	if m.AutoReady && m.Ready != nil {
		go m.Ready(seq)
	}
}

func (m *MockPlayer) Play()  { m.record(PlayerCall{Op: "play"}) }
func (m *MockPlayer) Pause() { m.record(PlayerCall{Op: "pause"}) }
func (m *MockPlayer) SetVolume(v int) {
	m.record(PlayerCall{Op: "volume", Volume: v})
}

// Calls returns a copy of the recorded directives.
func (m *MockPlayer) Calls() []PlayerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlayerCall(nil), m.calls...)
}

// LastLoad returns the most recent load directive.
func (m *MockPlayer) LastLoad() (PlayerCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Op == "load" {
			return m.calls[i], true
		}
	}
	return PlayerCall{}, false
}

// MockProvider is an in-memory [identity.Provider]. Err, when set, fails every operation.
type MockProvider struct {
	mu        sync.Mutex
	Err       error
	Principal *identity.Principal // returned by successful sign-ins
	current   *identity.Principal
	listeners []func(*identity.Principal)
	SignOuts  int
}

func (m *MockProvider) succeed(p *identity.Principal) (*identity.Principal, error) {
	m.mu.Lock()
	if m.Err != nil {
		err := m.Err
		m.mu.Unlock()
		return nil, err
	}
	m.current = p
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	for _, cb := range listeners {
		if cb != nil {
			cb(p)
		}
	}
	return p, nil
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*identity.Principal, error) {
	return m.succeed(m.principal(email, ""))
}

func (m *MockProvider) SignUp(ctx context.Context, email, password, displayName string) (*identity.Principal, error) {
	return m.succeed(m.principal(email, displayName))
}

func (m *MockProvider) SignInWithFederatedProvider(ctx context.Context, token *oauth2.Token) (*identity.Principal, error) {
	return m.succeed(m.principal("federated@example.com", ""))
}

func (m *MockProvider) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.SignOuts++
	m.mu.Unlock()
	_, err := m.succeed(nil)
	return err
}

func (m *MockProvider) OnAuthStateChanged(cb func(*identity.Principal)) func() {
	m.mu.Lock()
	i := len(m.listeners)
	m.listeners = append(m.listeners, cb)
	current := m.current
	m.mu.Unlock()

	cb(current)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners[i] = nil
	}
}

func (m *MockProvider) principal(email, name string) *identity.Principal {
	if m.Principal != nil {
		return m.Principal
	}
	return &identity.Principal{UID: "mock-" + email, Email: email, DisplayName: name}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
