package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/reload/internal/shared"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.codes = append(f.codes, code)
	return f.token, f.err
}

func text(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes by method on a shared path", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("GET", "/login", text("form"))
		r.Handle("post", "/login", text("submitted"))

		for method, want := range map[string]string{http.MethodGet: "form", http.MethodPost: "submitted"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(method, "/login", nil))
			if rec.Body.String() != want {
				t.Errorf("%s /login: expected %q, got %q", method, want, rec.Body.String())
			}
		}

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/login", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle("GET", "/", text("ok"), mark("route"))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := []string{"first", "second", "route"}
		if strings.Join(order, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, order)
		}
	})

	t.Run("path wildcards", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc("DELETE", "/tracks/{id}", func(w http.ResponseWriter, req *http.Request) {
			io.WriteString(w, req.PathValue("id"))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tracks/abc", nil))
		if rec.Body.String() != "abc" {
			t.Errorf("expected abc, got %q", rec.Body.String())
		}
	})
}

func TestRecover(t *testing.T) {
	h := Recover(shared.NewLogger(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestLogging(t *testing.T) {
	var buf strings.Builder
	h := Logging(shared.NewLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	if !strings.Contains(buf.String(), "/missing") || !strings.Contains(buf.String(), "404") {
		t.Errorf("expected request line with path and status, got %q", buf.String())
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("per client buckets", func(t *testing.T) {
		l := NewRateLimiter(0.001, 2)
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		if !l.Allow("a") || !l.Allow("a") {
			t.Fatal("burst should be allowed")
		}
		if l.Allow("a") {
			t.Error("third attempt should be throttled")
		}
		if !l.Allow("b") {
			t.Error("other clients keep their own bucket")
		}
	})

	t.Run("idle clients are forgotten", func(t *testing.T) {
		l := NewRateLimiter(0.001, 1)
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		l.Allow("a")
		now = now.Add(time.Hour)
		l.Allow("b")
		if _, ok := l.clients["a"]; ok {
			t.Error("expected idle client to be evicted")
		}
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		l := NewLoginLimiter(shared.AuthConfig{})
		for range 50 {
			if !l.Allow("a") {
				t.Fatal("expected unlimited")
			}
		}
	})

	t.Run("middleware responds 429", func(t *testing.T) {
		l := NewRateLimiter(0.001, 1)
		h := l.Middleware(text("ok"))

		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		first := httptest.NewRecorder()
		h.ServeHTTP(first, req)
		second := httptest.NewRecorder()
		h.ServeHTTP(second, req)

		if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
			t.Errorf("expected 200 then 429, got %d then %d", first.Code, second.Code)
		}
	})

	t.Run("ClientIP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:4000"
		if got := ClientIP(req); got != "192.0.2.1" {
			t.Errorf("expected 192.0.2.1, got %s", got)
		}
		req.RemoteAddr = "pipe"
		if got := ClientIP(req); got != "pipe" {
			t.Errorf("expected pipe, got %s", got)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("exchanges the code", func(t *testing.T) {
		ex := &fakeExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "state-1")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=state-1&code=abc", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "access" {
			t.Errorf("unexpected result %+v", result)
		}
		if len(ex.codes) != 1 || ex.codes[0] != "abc" {
			t.Errorf("unexpected codes %v", ex.codes)
		}
	})

	t.Run("rejects a wrong state", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "state-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=other&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("reports provider errors", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{}, "s")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{err: shared.ErrAuthFailed}, "s")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=s&code=c", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("only the first callback counts", func(t *testing.T) {
		h := NewOAuthHandler(&fakeExchanger{token: &oauth2.Token{AccessToken: "a"}}, "s")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, CallbackPath+"?state=s&code=c", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=s&code=c", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
	})

	t.Run("registered through a router", func(t *testing.T) {
		r := NewBasicRouter()
		h := NewOAuthHandler(&fakeExchanger{token: &oauth2.Token{AccessToken: "a"}}, "s")
		r.Handler(h)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CallbackPath+"?state=s&code=c", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := New(ln.Addr().String(), text("pong"), shared.NewLogger(io.Discard))
	shutdown := make(chan struct{})
	srv.RegisterOnShutdown(func() { close(shutdown) })

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("expected pong, got %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	<-shutdown
}
