// Package models defines the entities exchanged with the recommendation backend.
//
// The types fall into three groups:
//
//  1. Identity: [UserProfile] and [AuthResponse], returned by the sign-in exchange and the profile endpoint.
//  2. Catalog: [Movie] as served by the popular, gallery and details endpoints, and [MovieRef], the
//     normalized projection the client sends back when rating or saving a movie.
//  3. Preferences and results: [Preferences] (the wizard draft on the wire), [StoredPreferences] (the
//     server copy, whose rated lists may be grouped by genre), [RecommendationRequest],
//     [Recommendation], [Feedback] and [HistoryEntry].
//
// Field names follow the backend's JSON. Nothing here is persisted locally.
package models
