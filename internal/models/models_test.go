package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMovieRef(t *testing.T) {
	t.Run("Falls Back To Id And Vote Average", func(t *testing.T) {
		va := 7.4
		m := Movie{ID: 603, Title: "The Matrix", VoteAverage: &va, ReleaseDate: "1999-03-31", Genres: []string{"scifi"}}

		ref := m.Ref()
		if ref.TMDBID != 603 {
			t.Errorf("expected tmdbId 603, got %d", ref.TMDBID)
		}
		if ref.Rating == nil || *ref.Rating != 7.4 {
			t.Errorf("expected rating from vote average, got %v", ref.Rating)
		}
		if ref.Year == nil || *ref.Year != 1999 {
			t.Errorf("expected year 1999, got %v", ref.Year)
		}

		ref.Genres[0] = "mutated"
		if m.Genres[0] != "scifi" {
			t.Error("expected ref genres to be a copy")
		}
	})

	t.Run("Prefers Explicit Fields", func(t *testing.T) {
		r := 8.0
		va := 6.0
		m := Movie{TMDBID: 1, ID: 2, Rating: &r, VoteAverage: &va, Year: 2001, ReleaseDate: "1990-01-01"}

		ref := m.Ref()
		if ref.TMDBID != 1 || *ref.Rating != 8.0 || *ref.Year != 2001 {
			t.Errorf("unexpected ref %+v", ref)
		}
	})

	t.Run("Unknown Year", func(t *testing.T) {
		if ref := (Movie{TMDBID: 5, ReleaseDate: "n/a"}).Ref(); ref.Year != nil {
			t.Errorf("expected nil year, got %d", *ref.Year)
		}
	})
}

func TestMovieGroups(t *testing.T) {
	tc := []struct {
		name string
		data string
		want []int
	}{
		{name: "flat list", data: `[{"tmdbId":1,"title":"a"},{"tmdbId":2,"title":"b"},{"tmdbId":1,"title":"a"}]`, want: []int{1, 2}},
		{name: "grouped by genre", data: `{"drama":[{"tmdbId":3}],"action":[{"tmdbId":1},{"tmdbId":3}]}`, want: []int{1, 3}},
		{name: "null", data: `null`, want: nil},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var g MovieGroups
			if err := json.Unmarshal([]byte(tt.data), &g); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(g) != len(tt.want) {
				t.Fatalf("expected %d movies, got %d", len(tt.want), len(g))
			}
			for i, id := range tt.want {
				if g[i].TMDBID != id {
					t.Errorf("movie %d: expected tmdbId %d, got %d", i, id, g[i].TMDBID)
				}
			}
		})
	}

	t.Run("Invalid Shape", func(t *testing.T) {
		var g MovieGroups
		if err := json.Unmarshal([]byte(`"nope"`), &g); err == nil {
			t.Error("expected error for string payload")
		}
	})
}

func TestUserProfileUnmarshal(t *testing.T) {
	tc := map[string]string{
		`{"id":"abc","email":"a@b.c","name":"A"}`: "abc",
		`{"id":42,"email":"a@b.c","name":"A"}`:    "42",
		`{"email":"a@b.c"}`:                       "",
	}

	for in, want := range tc {
		var u UserProfile
		if err := json.Unmarshal([]byte(in), &u); err != nil {
			t.Fatalf("unexpected error for %s: %v", in, err)
		}
		if u.ID != want {
			t.Errorf("expected id %q, got %q", want, u.ID)
		}
		if u.Email != "a@b.c" {
			t.Errorf("expected email to decode, got %q", u.Email)
		}
	}
}

func TestUserProfilePicture(t *testing.T) {
	var u UserProfile
	in := `{"id":"u1","email":"a@b.c","name":"A","profilePicture":"https://img.example/p.png"}`
	if err := json.Unmarshal([]byte(in), &u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Picture != "https://img.example/p.png" {
		t.Errorf("expected profile picture to decode, got %q", u.Picture)
	}

	out, err := json.Marshal(UserProfile{ID: "u1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(out), "profilePicture") {
		t.Errorf("expected empty picture to be omitted, got %s", out)
	}
}

func TestFeedbackFor(t *testing.T) {
	rating := 8.4
	ref := MovieRef{TMDBID: 27205, Title: "Inception", Genres: []string{"scifi"}, Rating: &rating}

	t.Run("Accepted Keeps Rating", func(t *testing.T) {
		fb := FeedbackFor(ref, true)
		if !fb.Accepted || fb.Rating == nil || *fb.Rating != 8.4 {
			t.Errorf("expected accepted feedback with rating, got %+v", fb)
		}
	})

	t.Run("Rejected Drops Rating", func(t *testing.T) {
		fb := FeedbackFor(ref, false)
		if fb.Accepted || fb.Rating != nil {
			t.Errorf("expected rejection without rating, got %+v", fb)
		}
		if fb.MovieID != 27205 || fb.Title != "Inception" || len(fb.Genres) != 1 {
			t.Errorf("expected identity fields to carry over, got %+v", fb)
		}
	})
}

func TestRecommendationRequestJSON(t *testing.T) {
	req := RecommendationRequest{Genres: []string{"action"}, Moods: []string{}, DealBreakers: []string{}}

	data, _ := json.Marshal(req)
	if string(data) != `{"genres":["action"],"moods":[],"socialContext":null,"dealBreakers":[]}` {
		t.Errorf("unexpected payload %s", data)
	}

	req.IsAlternative = true
	data, _ = json.Marshal(req)
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	if decoded["isAlternative"] != true {
		t.Errorf("expected isAlternative flag, got %s", data)
	}
}

func TestHistoryEntryOutcome(t *testing.T) {
	yes, no := true, false
	if (HistoryEntry{}).Outcome() != "no feedback" {
		t.Error("expected no feedback")
	}
	if (HistoryEntry{Accepted: &yes}).Outcome() != "accepted" {
		t.Error("expected accepted")
	}
	if (HistoryEntry{Accepted: &no}).Outcome() != "rejected" {
		t.Error("expected rejected")
	}
}
