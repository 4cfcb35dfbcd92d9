// Package preferences holds the wizard's draft selection and the fixed catalog of tokens it is built from.
//
// A [Draft] is the single mutable preference object of a wizard session. It keeps selection order,
// never holds a token twice, and keeps the liked and disliked lists disjoint on tmdbId: rating a movie
// one way removes it from the other list.
package preferences
