package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cinehint/internal/shared"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		if r.Form.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at","token_type":"Bearer","refresh_token":"rt","id_token":"idt","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL},
	}
}

func TestCallbackHandler(t *testing.T) {
	tokenSrv := newTokenServer(t)

	t.Run("Exchanges Code", func(t *testing.T) {
		h := NewCallbackHandler(newConfig(tokenSrv.URL), "s1", oauth2.GenerateVerifier())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=good-code", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if idt, _ := result.Token.Extra("id_token").(string); idt != "idt" {
			t.Errorf("expected id_token idt, got %q", idt)
		}
	})

	t.Run("Rejects State Mismatch", func(t *testing.T) {
		h := NewCallbackHandler(newConfig(tokenSrv.URL), "s1", "v")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := NewCallbackHandler(newConfig(tokenSrv.URL), "s1", "v")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("Processes Only One Callback", func(t *testing.T) {
		h := NewCallbackHandler(newConfig(tokenSrv.URL), "s1", oauth2.GenerateVerifier())
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=good-code", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected second callback to be rejected, got %d", rec.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := NewBasicRouter()
	r.Use(mw("outer"), mw("inner"))
	r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Body.String() != "pong" {
		t.Errorf("expected pong, got %q", rec.Body.String())
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("expected middleware order outer,inner, got %v", order)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRunLoopback(t *testing.T) {
	tokenSrv := newTokenServer(t)

	listen := func(t *testing.T) net.Listener {
		t.Helper()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		return ln
	}

	t.Run("Completes When Browser Returns", func(t *testing.T) {
		ln := listen(t)
		callback := "http://" + ln.Addr().String() + CallbackPath
		h := NewCallbackHandler(newConfig(tokenSrv.URL), "s1", oauth2.GenerateVerifier())

		open := func(string) error {
			go func() {
				resp, err := http.Get(callback + "?" + url.Values{"state": {"s1"}, "code": {"good-code"}}.Encode())
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		token, err := RunLoopback(context.Background(), LoopbackConfig{
			Listener: ln,
			AuthURL:  "https://accounts.example.com/auth",
			Handler:  h,
			Open:     open,
			Timeout:  5 * time.Second,
			Logger:   shared.DiscardLogger(),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.RefreshToken != "rt" {
			t.Errorf("expected refresh token rt, got %q", token.RefreshToken)
		}
	})

	t.Run("Times Out", func(t *testing.T) {
		_, err := RunLoopback(context.Background(), LoopbackConfig{
			Listener: listen(t),
			Handler:  NewCallbackHandler(newConfig(tokenSrv.URL), "s1", "v"),
			Open:     func(string) error { return nil },
			Timeout:  50 * time.Millisecond,
			Logger:   shared.DiscardLogger(),
		})
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Stops On Context Cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RunLoopback(ctx, LoopbackConfig{
			Listener: listen(t),
			Handler:  NewCallbackHandler(newConfig(tokenSrv.URL), "s1", "v"),
			Open:     func(string) error { return errors.New("no browser") },
			Timeout:  5 * time.Second,
			Logger:   shared.DiscardLogger(),
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
