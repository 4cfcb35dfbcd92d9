// Package library assembles the signed-in user's collections for the profile, watchlist and gallery screens.
package library
