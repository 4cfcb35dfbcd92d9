package toggle

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/cinehint/internal/api"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/session"
	"github.com/desertthunder/cinehint/internal/shared"
	tu "github.com/desertthunder/cinehint/internal/testing"
)

type item struct {
	ID   string
	Name string
}

type fakeRemote struct {
	mu        sync.Mutex
	addErr    error
	removeErr error
	checkErr  map[string]error
	members   map[string]bool
	adds      []string
	removes   []string
	checks    atomic.Int32
	gate      chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{members: map[string]bool{}, checkErr: map[string]error{}}
}

func (f *fakeRemote) add(_ context.Context, it item) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, it.ID)
	if f.addErr != nil {
		return f.addErr
	}
	f.members[it.ID] = true
	return nil
}

func (f *fakeRemote) remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, id)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.members, id)
	return nil
}

func (f *fakeRemote) check(_ context.Context, id string) (bool, error) {
	f.checks.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkErr[id]; err != nil {
		return false, err
	}
	return f.members[id], nil
}

func newTestController(name string, f *fakeRemote) *Controller[string, item] {
	return New(Options[string, item]{
		Name:   name,
		Key:    func(it item) string { return it.ID },
		Add:    f.add,
		Remove: f.remove,
		Check:  f.check,
		Logger: shared.DiscardLogger(),
	})
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	heat := item{ID: "949", Name: "Heat"}

	t.Run("adds then removes", func(t *testing.T) {
		f := newFakeRemote()
		c := newTestController("watchlist", f)

		got, err := c.Toggle(ctx, heat)
		if err != nil || !got {
			t.Fatalf("Toggle() = %v, %v, want true, nil", got, err)
		}
		got, err = c.Toggle(ctx, heat)
		if err != nil || got {
			t.Fatalf("Toggle() = %v, %v, want false, nil", got, err)
		}
		if len(f.adds) != 1 || len(f.removes) != 1 {
			t.Errorf("adds = %v, removes = %v", f.adds, f.removes)
		}
		if c.Busy(heat.ID) {
			t.Error("Busy() = true after toggle finished")
		}
	})

	t.Run("failure leaves status unchanged", func(t *testing.T) {
		tests := []struct {
			name   string
			member bool
			setup  func(*fakeRemote)
		}{
			{name: "add", member: false, setup: func(f *fakeRemote) { f.addErr = errors.New("boom") }},
			{name: "remove", member: true, setup: func(f *fakeRemote) { f.removeErr = errors.New("boom") }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFakeRemote()
				tt.setup(f)
				c := newTestController("watchlist", f)
				c.Set(heat.ID, tt.member)

				got, err := c.Toggle(ctx, heat)
				if err == nil {
					t.Fatal("Toggle() error = nil")
				}
				if got != tt.member || c.Status(heat.ID) != tt.member {
					t.Errorf("status = %v, want %v", c.Status(heat.ID), tt.member)
				}
				if c.Busy(heat.ID) {
					t.Error("Busy() = true after failure")
				}
			})
		}
	})

	t.Run("busy key is a no-op", func(t *testing.T) {
		f := newFakeRemote()
		f.gate = make(chan struct{})
		c := newTestController("watchlist", f)

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Toggle(ctx, heat)
		}()

		for !c.Busy(heat.ID) {
			time.Sleep(time.Millisecond)
		}

		if _, err := c.Toggle(ctx, heat); !errors.Is(err, shared.ErrBusy) {
			t.Errorf("second Toggle() error = %v, want ErrBusy", err)
		}
		close(f.gate)
		<-done

		if len(f.adds) != 1 {
			t.Errorf("adds = %v, want one call", f.adds)
		}
		if !c.Status(heat.ID) {
			t.Error("Status() = false after add")
		}
	})

	t.Run("add skips members", func(t *testing.T) {
		f := newFakeRemote()
		c := newTestController("watchlist", f)
		c.Seed([]item{heat})

		if err := c.Add(ctx, heat); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if len(f.adds) != 0 {
			t.Errorf("adds = %v, want none", f.adds)
		}
	})
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()

	t.Run("bounded prefix", func(t *testing.T) {
		f := newFakeRemote()
		items := make([]item, 30)
		for i := range items {
			items[i] = item{ID: string(rune('a' + i))}
			f.members[items[i].ID] = true
		}
		c := newTestController("watchlist", f)

		got := c.CheckAll(ctx, items, CheckOptions{})
		if len(got) != DefaultCheckLimit {
			t.Errorf("checked %d, want %d", len(got), DefaultCheckLimit)
		}
		if n := f.checks.Load(); n != DefaultCheckLimit {
			t.Errorf("remote checks = %d, want %d", n, DefaultCheckLimit)
		}
		if c.Status(items[25].ID) {
			t.Error("entity past the limit was marked")
		}
	})

	t.Run("failure defaults to not a member", func(t *testing.T) {
		f := newFakeRemote()
		f.members["a"] = true
		f.members["b"] = true
		f.checkErr["a"] = errors.New("timeout")
		c := newTestController("watchlist", f)

		got := c.CheckAll(ctx, []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, CheckOptions{Limit: 5, RateLimit: 1000})
		if got["a"] || !got["b"] || got["c"] {
			t.Errorf("CheckAll() = %v", got)
		}
		if !c.Status("b") || c.Status("a") {
			t.Errorf("status a=%v b=%v", c.Status("a"), c.Status("b"))
		}
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	heat := item{ID: "949"}

	t.Run("adds then removes", func(t *testing.T) {
		fromRemote, toRemote := newFakeRemote(), newFakeRemote()
		from, to := newTestController("liked", fromRemote), newTestController("disliked", toRemote)
		from.Seed([]item{heat})

		if err := Move(ctx, from, to, heat); err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if from.Status(heat.ID) || !to.Status(heat.ID) {
			t.Errorf("from=%v to=%v", from.Status(heat.ID), to.Status(heat.ID))
		}
	})

	t.Run("failed add skips remove", func(t *testing.T) {
		fromRemote, toRemote := newFakeRemote(), newFakeRemote()
		toRemote.addErr = errors.New("boom")
		from, to := newTestController("liked", fromRemote), newTestController("disliked", toRemote)
		from.Seed([]item{heat})

		if err := Move(ctx, from, to, heat); err == nil {
			t.Fatal("Move() error = nil")
		}
		if len(fromRemote.removes) != 0 {
			t.Errorf("removes = %v, want none", fromRemote.removes)
		}
		if !from.Status(heat.ID) {
			t.Error("entity left the source list")
		}
	})

	t.Run("failed remove is partial", func(t *testing.T) {
		fromRemote, toRemote := newFakeRemote(), newFakeRemote()
		fromRemote.removeErr = errors.New("boom")
		from, to := newTestController("liked", fromRemote), newTestController("disliked", toRemote)
		from.Seed([]item{heat})

		err := Move(ctx, from, to, heat)
		if !errors.Is(err, shared.ErrPartialMove) {
			t.Fatalf("Move() error = %v, want ErrPartialMove", err)
		}
		if len(fromRemote.removes) != 1 {
			t.Errorf("removes = %v, want one attempt", fromRemote.removes)
		}
		if !from.Status(heat.ID) || !to.Status(heat.ID) {
			t.Error("entity should be in both lists until refresh")
		}
	})
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	rating := 8.1
	year := 1995
	heat := models.MovieRef{TMDBID: 949, Title: "Heat", Genres: []string{"crime"}, Rating: &rating, Year: &year}

	newClient := func(t *testing.T, srv *tu.APIServer) *api.Client {
		return api.NewClient(api.Options{
			BaseURL: srv.URL,
			Tokens:  session.New(session.NewMemoryStore("token")),
			Logger:  shared.DiscardLogger(),
		})
	}

	t.Run("watchlist", func(t *testing.T) {
		srv := tu.NewAPIServer(t, map[string]http.HandlerFunc{
			"POST /users/watchlist":          tu.JSON(http.StatusCreated, map[string]string{"message": "added"}),
			"DELETE /users/watchlist/949":    tu.JSON(http.StatusOK, map[string]string{"message": "removed"}),
			"GET /users/watchlist/check/949": tu.JSON(http.StatusOK, map[string]bool{"isInWatchlist": true}),
		})
		w := NewWatchlist(newClient(t, srv), shared.DiscardLogger())

		if got := w.CheckAll(ctx, []models.MovieRef{heat}, CheckOptions{}); !got[949] {
			t.Fatalf("CheckAll() = %v", got)
		}
		if member, err := w.Toggle(ctx, heat); err != nil || member {
			t.Fatalf("Toggle() = %v, %v, want removal", member, err)
		}
		if member, err := w.Toggle(ctx, heat); err != nil || !member {
			t.Fatalf("Toggle() = %v, %v, want add", member, err)
		}

		adds := srv.CallsTo(http.MethodPost, "/users/watchlist")
		if len(adds) != 1 || adds[0].Body["title"] != "Heat" {
			t.Errorf("add calls = %+v", adds)
		}
	})

	t.Run("move liked to disliked", func(t *testing.T) {
		srv := tu.NewAPIServer(t, map[string]http.HandlerFunc{
			"POST /movies/feedback":               tu.JSON(http.StatusOK, map[string]string{}),
			"DELETE /users/preferences/liked/949": tu.JSON(http.StatusOK, map[string]string{}),
		})
		client := newClient(t, srv)
		liked, disliked := NewLiked(client, shared.DiscardLogger()), NewDisliked(client, shared.DiscardLogger())
		liked.Seed([]models.MovieRef{heat})

		if err := Move(ctx, liked, disliked, heat); err != nil {
			t.Fatalf("Move() error = %v", err)
		}

		calls := srv.Calls()
		if len(calls) != 2 || calls[0].Path != "/movies/feedback" || calls[1].Path != "/users/preferences/liked/949" {
			t.Fatalf("calls = %+v", calls)
		}
		fb := calls[0].Body
		if fb["accepted"] != false {
			t.Errorf("accepted = %v, want false", fb["accepted"])
		}
		if _, ok := fb["rating"]; ok {
			t.Error("disliked feedback carried a rating")
		}
	})
}
