package preferences

import (
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/cinehint/internal/models"
)

// AllGenres is the popular-movies filter used when no genre is selected.
const AllGenres = "all"

// Draft accumulates the wizard's selections. The zero value is an empty draft.
type Draft struct {
	mu            sync.RWMutex
	genres        []string
	liked         []models.MovieRef
	disliked      []models.MovieRef
	moods         []string
	socialContext *string
	dealBreakers  []string
}

// NewDraft returns an empty draft.
func NewDraft() *Draft { return &Draft{} }

// Load replaces the draft with p.
func (d *Draft) Load(p models.Preferences) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.genres = uniq(p.Genres)
	d.liked = cloneRefs(models.Dedupe(p.LikedMovies))
	d.disliked = nil
	for _, r := range models.Dedupe(p.DislikedMovies) {
		if indexOf(d.liked, r.TMDBID) >= 0 {
			continue
		}
		r = r.Clone()
		r.Rating = nil
		d.disliked = append(d.disliked, r)
	}
	d.moods = uniq(p.Moods)
	d.socialContext = cloneString(p.SocialContext)
	d.dealBreakers = uniq(p.DealBreakers)
}

// Reset empties the draft.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.genres, d.liked, d.disliked, d.moods, d.dealBreakers = nil, nil, nil, nil, nil
	d.socialContext = nil
}

// IsEmpty reports whether nothing has been selected.
func (d *Draft) IsEmpty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.genres) == 0 && len(d.liked) == 0 && len(d.disliked) == 0 &&
		len(d.moods) == 0 && d.socialContext == nil && len(d.dealBreakers) == 0
}

// ToggleGenre adds or removes a genre and reports whether it is now selected.
func (d *Draft) ToggleGenre(g string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return toggle(&d.genres, g)
}

// HasGenre reports whether g is selected.
func (d *Draft) HasGenre(g string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Contains(d.genres, g)
}

// GenreQuery is the popular-movies filter: the selected genres joined by commas, or [AllGenres].
func (d *Draft) GenreQuery() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.genres) == 0 {
		return AllGenres
	}
	return strings.Join(d.genres, ",")
}

// Rate records a like or dislike, moving the movie out of the opposite list.
//
// A movie rated again on the same side moves to the end of that list. Disliked entries carry no rating.
func (d *Draft) Rate(ref models.MovieRef, liked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ref = ref.Clone()
	d.liked = without(d.liked, ref.TMDBID)
	d.disliked = without(d.disliked, ref.TMDBID)
	if liked {
		d.liked = append(d.liked, ref)
		return
	}
	ref.Rating = nil
	d.disliked = append(d.disliked, ref)
}

// Unrate drops a movie from both rated lists.
func (d *Draft) Unrate(tmdbID int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.liked = without(d.liked, tmdbID)
	d.disliked = without(d.disliked, tmdbID)
}

// IsLiked reports whether the movie is in the liked list.
func (d *Draft) IsLiked(tmdbID int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return indexOf(d.liked, tmdbID) >= 0
}

// IsDisliked reports whether the movie is in the disliked list.
func (d *Draft) IsDisliked(tmdbID int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return indexOf(d.disliked, tmdbID) >= 0
}

// ToggleMood adds or removes a mood and reports whether it is now selected.
func (d *Draft) ToggleMood(m string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return toggle(&d.moods, m)
}

// HasMood reports whether m is selected.
func (d *Draft) HasMood(m string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Contains(d.moods, m)
}

// ToggleSocialContext selects c, or clears it when c is already selected.
func (d *Draft) ToggleSocialContext(c string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.socialContext != nil && *d.socialContext == c {
		d.socialContext = nil
		return false
	}
	d.socialContext = &c
	return true
}

// SocialContext returns the selected context and whether one is set.
func (d *Draft) SocialContext() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.socialContext == nil {
		return "", false
	}
	return *d.socialContext, true
}

// ToggleDealBreaker adds or removes a deal-breaker and reports whether it is now selected.
func (d *Draft) ToggleDealBreaker(b string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return toggle(&d.dealBreakers, b)
}

// HasDealBreaker reports whether b is selected.
func (d *Draft) HasDealBreaker(b string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Contains(d.dealBreakers, b)
}

// CanContinueContext reports whether the context step may advance: a social context and at least one mood.
func (d *Draft) CanContinueContext() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.socialContext != nil && len(d.moods) > 0
}

// Snapshot returns a deep copy of the draft. Slices are never nil.
func (d *Draft) Snapshot() models.Preferences {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return models.Preferences{
		Genres:         cloneStrings(d.genres),
		LikedMovies:    cloneRefs(d.liked),
		DislikedMovies: cloneRefs(d.disliked),
		Moods:          cloneStrings(d.moods),
		SocialContext:  cloneString(d.socialContext),
		DealBreakers:   cloneStrings(d.dealBreakers),
	}
}

// RecommendationRequest builds the request body for the current selections.
func (d *Draft) RecommendationRequest(alternative bool) models.RecommendationRequest {
	p := d.Snapshot()
	return models.RecommendationRequest{
		Genres:        p.Genres,
		Moods:         p.Moods,
		SocialContext: p.SocialContext,
		DealBreakers:  p.DealBreakers,
		IsAlternative: alternative,
	}
}

func toggle(list *[]string, v string) bool {
	if i := slices.Index(*list, v); i >= 0 {
		*list = slices.Delete(*list, i, i+1)
		return false
	}
	*list = append(*list, v)
	return true
}

func uniq(in []string) []string {
	var out []string
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(refs []models.MovieRef, tmdbID int) int {
	return slices.IndexFunc(refs, func(r models.MovieRef) bool { return r.TMDBID == tmdbID })
}

func without(refs []models.MovieRef, tmdbID int) []models.MovieRef {
	return slices.DeleteFunc(refs, func(r models.MovieRef) bool { return r.TMDBID == tmdbID })
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

func cloneRefs(in []models.MovieRef) []models.MovieRef {
	out := make([]models.MovieRef, 0, len(in))
	for _, r := range in {
		out = append(out, r.Clone())
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
