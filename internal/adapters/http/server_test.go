package http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	adapthttp "github.com/jsamuelsen11/go-todo-service/internal/adapters/http"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-todo-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func localConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
}

// runServer starts s in the background and returns a channel with Run's
// result plus a cancel that triggers shutdown.
func runServer(t *testing.T, s *adapthttp.Server) (<-chan error, context.CancelFunc) {
	t.Helper()

	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	t.Cleanup(cancel)
	return done, cancel
}

func TestServer_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{name: "ipv4", host: "127.0.0.1", port: 9090, want: "127.0.0.1:9090"},
		{name: "all interfaces", host: "0.0.0.0", port: 8080, want: "0.0.0.0:8080"},
		{name: "ipv6", host: "::1", port: 8080, want: "[::1]:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := adapthttp.NewServer(config.ServerConfig{Host: tt.host, Port: tt.port}, http.NotFoundHandler(), nil)
			if got := s.Addr(); got != tt.want {
				t.Errorf("Addr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_ListenReportsBoundPort(t *testing.T) {
	t.Parallel()

	s := adapthttp.NewServer(localConfig(), http.NotFoundHandler(), discardLogger())
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	done, cancel := runServer(t, s)
	if strings.HasSuffix(s.Addr(), ":0") {
		t.Errorf("Addr() = %q, want the bound port", s.Addr())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestServer_ListenAddressInUse(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	t.Cleanup(func() { _ = taken.Close() })

	cfg := localConfig()
	cfg.Port = taken.Addr().(*net.TCPAddr).Port

	s := adapthttp.NewServer(cfg, http.NotFoundHandler(), discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want address in use")
	}
}

func TestServer_ServesUntilCanceled(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s := adapthttp.NewServer(localConfig(), handler, discardLogger())
	done, cancel := runServer(t, s)

	resp, err := http.Get("http://" + s.Addr() + "/health/live")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after clean drain", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestServer_HandlerDeadlineReachesClient(t *testing.T) {
	t.Parallel()

	cfg := localConfig()
	cfg.WriteTimeout = 200 * time.Millisecond
	cfg.HandlerTimeout = 200 * time.Millisecond

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, "too late")
	})
	s := adapthttp.NewServer(cfg, middleware.Timeout(cfg.HandlerTimeout)(slow), discardLogger())
	runServer(t, s)

	resp, err := http.Get("http://" + s.Addr() + "/api/todos")
	if err != nil {
		t.Fatalf("GET error = %v, want a 504 response", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status code = %d, want %d", resp.StatusCode, http.StatusGatewayTimeout)
	}
	if ct := resp.Header.Get("Content-Type"); ct != dto.ProblemContentType {
		t.Errorf("Content-Type = %q, want %q", ct, dto.ProblemContentType)
	}
}

func TestServer_DrainsInFlightRequest(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		_, _ = io.WriteString(w, "finished")
	})
	s := adapthttp.NewServer(localConfig(), handler, discardLogger())
	done, cancel := runServer(t, s)

	got := make(chan string, 1)
	go func() {
		resp, err := http.Get("http://" + s.Addr() + "/api/todos")
		if err != nil {
			got <- err.Error()
			return
		}
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		got <- string(body)
	}()

	<-started
	cancel()

	if body := <-got; body != "finished" {
		t.Errorf("in-flight body = %q, want %q", body, "finished")
	}
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestServer_ShutdownTimeoutExceeded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		close(started)
		<-release
	})
	t.Cleanup(func() { close(release) })

	cfg := localConfig()
	cfg.ShutdownTimeout = 50 * time.Millisecond
	s := adapthttp.NewServer(cfg, handler, discardLogger())
	done, cancel := runServer(t, s)

	go func() {
		resp, err := http.Get("http://" + s.Addr() + "/api/todos")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	<-started
	start := time.Now()
	cancel()

	err := <-done
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run() took %s after cancel, want about the 50ms shutdown timeout", elapsed)
	}
}
