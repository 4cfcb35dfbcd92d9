// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders one screen per [wizard.Step]:
//  1. welcome : sign in, start the wizard or open a side screen
//  2. genres, movies, context, dealbreakers : build the preference draft
//  3. processing : spinner while a recommendation is requested
//  4. recommendation / error : accept, reject, retry or start over
//  5. gallery, watchlist, profile, movieDetails : browse and manage collections
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Flow transitions arrive on a channel the [wizard.Flow] publishes to, so the processing screen is shown while the request runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
