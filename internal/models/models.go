package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// UserProfile is the signed-in user as reported by the backend.
type UserProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"profilePicture,omitempty"`
}

// UnmarshalJSON accepts string or numeric user ids.
func (u *UserProfile) UnmarshalJSON(data []byte) error {
	type alias UserProfile
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.ID) == 0 || string(aux.ID) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.ID, &s); err == nil {
		u.ID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.ID, &n); err != nil {
		return fmt.Errorf("invalid user id %s", aux.ID)
	}
	u.ID = n.String()
	return nil
}

// AuthResponse is the result of exchanging an identity-provider credential for a session token.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// Movie is a catalog entry. Only TMDBID (or ID) and Title are guaranteed.
type Movie struct {
	TMDBID       int      `json:"tmdbId,omitempty"`
	ID           int      `json:"id,omitempty"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	PosterPath   string   `json:"posterPath,omitempty"`
	BackdropPath string   `json:"backdropPath,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	Year         int      `json:"year,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	VoteAverage  *float64 `json:"voteAverage,omitempty"`
	Runtime      int      `json:"runtime,omitempty"`
	Director     string   `json:"director,omitempty"`
	Cast         []string `json:"cast,omitempty"`
}

// Key returns the movie's TMDB id, falling back to the generic id field.
func (m Movie) Key() int {
	if m.TMDBID != 0 {
		return m.TMDBID
	}
	return m.ID
}

// Score returns the movie's rating, falling back to its vote average.
func (m Movie) Score() *float64 {
	if m.Rating != nil {
		return m.Rating
	}
	return m.VoteAverage
}

// ReleaseYear returns Year or the year prefix of ReleaseDate, zero when neither is known.
func (m Movie) ReleaseYear() int {
	if m.Year != 0 {
		return m.Year
	}
	if len(m.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(m.ReleaseDate[:4]); err == nil {
			return y
		}
	}
	return 0
}

// Ref projects the movie into the normalized shape sent when saving or rating it.
func (m Movie) Ref() MovieRef {
	ref := MovieRef{
		TMDBID:     m.Key(),
		Title:      m.Title,
		Genres:     append([]string(nil), m.Genres...),
		PosterPath: m.PosterPath,
		Rating:     m.Score(),
	}
	if y := m.ReleaseYear(); y != 0 {
		ref.Year = &y
	}
	return ref
}

// MovieRef is the identifying subset of a movie used in rated lists and the watchlist.
type MovieRef struct {
	TMDBID     int        `json:"tmdbId"`
	Title      string     `json:"title"`
	Genres     []string   `json:"genres,omitempty"`
	PosterPath string     `json:"posterPath,omitempty"`
	Rating     *float64   `json:"rating,omitempty"`
	Year       *int       `json:"year,omitempty"`
	AddedAt    *time.Time `json:"addedAt,omitempty"`
}

// Clone returns a deep copy of the ref.
func (r MovieRef) Clone() MovieRef {
	c := r
	c.Genres = append([]string(nil), r.Genres...)
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	if r.Year != nil {
		v := *r.Year
		c.Year = &v
	}
	if r.AddedAt != nil {
		v := *r.AddedAt
		c.AddedAt = &v
	}
	return c
}

// Preferences is the wizard draft as sent to the preferences endpoint.
type Preferences struct {
	Genres         []string   `json:"genres"`
	LikedMovies    []MovieRef `json:"likedMovies"`
	DislikedMovies []MovieRef `json:"dislikedMovies"`
	Moods          []string   `json:"moods"`
	SocialContext  *string    `json:"socialContext"`
	DealBreakers   []string   `json:"dealBreakers"`
}

// StoredPreferences is the server-side copy of a user's preferences.
type StoredPreferences struct {
	Genres         []string    `json:"genres"`
	LikedMovies    MovieGroups `json:"likedMovies"`
	DislikedMovies MovieGroups `json:"dislikedMovies"`
	Moods          []string    `json:"moods"`
	SocialContext  *string     `json:"socialContext"`
	DealBreakers   []string    `json:"dealBreakers"`
}

// MovieGroups is a rated-movie list that the backend may send flat or grouped by genre.
//
// Decoding flattens the groups, in sorted genre order, keeping the first occurrence of each tmdbId.
type MovieGroups []MovieRef

// UnmarshalJSON implements [json.Unmarshaler].
func (g *MovieGroups) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = nil
		return nil
	}

	var flat []MovieRef
	if err := json.Unmarshal(data, &flat); err == nil {
		*g = Dedupe(flat)
		return nil
	}

	var grouped map[string][]MovieRef
	if err := json.Unmarshal(data, &grouped); err != nil {
		return fmt.Errorf("rated movies must be a list or a genre map: %w", err)
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var all []MovieRef
	for _, k := range keys {
		all = append(all, grouped[k]...)
	}
	*g = Dedupe(all)
	return nil
}

// Dedupe drops repeated tmdbIds, keeping first-seen order.
func Dedupe(refs []MovieRef) []MovieRef {
	seen := make(map[int]bool, len(refs))
	out := make([]MovieRef, 0, len(refs))
	for _, r := range refs {
		if seen[r.TMDBID] {
			continue
		}
		seen[r.TMDBID] = true
		out = append(out, r)
	}
	return out
}

// RecommendationRequest carries the preference snapshot sent to the recommendation endpoint.
type RecommendationRequest struct {
	Genres        []string `json:"genres"`
	Moods         []string `json:"moods"`
	SocialContext *string  `json:"socialContext"`
	DealBreakers  []string `json:"dealBreakers"`
	IsAlternative bool     `json:"isAlternative,omitempty"`
}

// Recommendation is a recommended movie plus the backend's reasoning.
//
// FeedbackGiven is client state: it is set once feedback for this instance has been submitted.
type Recommendation struct {
	Movie
	Reason        string `json:"reason,omitempty"`
	FeedbackGiven bool   `json:"-"`
}

// Feedback records whether the user accepted a movie.
type Feedback struct {
	MovieID  int      `json:"movieId"`
	Title    string   `json:"title"`
	Accepted bool     `json:"accepted"`
	Genres   []string `json:"genres,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// FeedbackFor builds the feedback payload for a movie ref. Rejections carry no rating.
func FeedbackFor(ref MovieRef, accepted bool) Feedback {
	fb := Feedback{
		MovieID:  ref.TMDBID,
		Title:    ref.Title,
		Accepted: accepted,
		Genres:   ref.Genres,
	}
	if accepted {
		fb.Rating = ref.Rating
	}
	return fb
}

// HistoryEntry is one past recommendation and the user's response to it, if any.
type HistoryEntry struct {
	MovieID   int       `json:"movieId"`
	Title     string    `json:"title"`
	Accepted  *bool     `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome describes the user's response in words.
func (h HistoryEntry) Outcome() string {
	switch {
	case h.Accepted == nil:
		return "no feedback"
	case *h.Accepted:
		return "accepted"
	default:
		return "rejected"
	}
}
