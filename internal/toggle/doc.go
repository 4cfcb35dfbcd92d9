// Package toggle implements pessimistic membership toggles for per-movie collections such as the
// watchlist and the liked and disliked lists.
//
// A [Controller] flips its local status only after the remote call succeeds and refuses a second
// toggle for the same key while one is in flight. [Move] reclassifies an entity across two
// controllers, and [Controller.CheckAll] rebuilds status for a bounded prefix of a list.
package toggle
