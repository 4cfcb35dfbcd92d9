package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cinehint/internal/formatter"
	"github.com/desertthunder/cinehint/internal/models"
	"github.com/desertthunder/cinehint/internal/preferences"
)

var (
	_ list.Item = optionItem{}
	_ list.Item = movieItem{}
	_ list.Item = refItem{}
)

// optionItem wraps a catalog [preferences.Option] to implement [list.Item].
type optionItem struct {
	option  preferences.Option
	kind    preferences.Kind
	checked func(string) bool
}

func (i optionItem) FilterValue() string { return i.option.Label }
func (i optionItem) Title() string {
	box := "[ ]"
	if i.checked != nil && i.checked(i.option.ID) {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.option.Label)
}
func (i optionItem) Description() string { return string(i.kind) }

// movieItem wraps [models.Movie] to implement [list.Item]. mark prefixes the title with per-movie state.
type movieItem struct {
	movie models.Movie
	mark  func(tmdbID int) string
}

func (i movieItem) FilterValue() string {
	return i.movie.Title + " " + strings.Join(i.movie.Genres, " ")
}
func (i movieItem) Title() string {
	if i.mark == nil {
		return i.movie.Title
	}
	return i.mark(i.movie.Key()) + i.movie.Title
}
func (i movieItem) Description() string {
	var parts []string
	if y := i.movie.ReleaseYear(); y != 0 {
		parts = append(parts, fmt.Sprint(y))
	}
	if len(i.movie.Genres) > 0 {
		parts = append(parts, strings.Join(i.movie.Genres, ", "))
	}
	if r := i.movie.Score(); r != nil {
		parts = append(parts, "⭐ "+formatter.FormatRating(r))
	}
	return strings.Join(parts, " • ")
}

// refItem wraps [models.MovieRef] to implement [list.Item]; section names the list it came from.
type refItem struct {
	ref     models.MovieRef
	section string
}

func (i refItem) FilterValue() string { return i.ref.Title }
func (i refItem) Title() string       { return i.ref.Title }
func (i refItem) Description() string {
	desc := i.section
	if i.ref.Year != nil {
		desc = fmt.Sprintf("%s • %d", desc, *i.ref.Year)
	}
	if len(i.ref.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.ref.Genres, ", "))
	}
	return desc
}

func optionItems(kind preferences.Kind, opts []preferences.Option, checked func(string) bool) []list.Item {
	items := make([]list.Item, len(opts))
	for i, o := range opts {
		items[i] = optionItem{option: o, kind: kind, checked: checked}
	}
	return items
}

func movieItems(movies []models.Movie, mark func(int) string) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, mark: mark}
	}
	return items
}

func refItems(refs []models.MovieRef, section string) []list.Item {
	items := make([]list.Item, len(refs))
	for i, r := range refs {
		items[i] = refItem{ref: r, section: section}
	}
	return items
}
