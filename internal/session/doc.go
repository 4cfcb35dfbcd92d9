// Package session holds the signed-in state of the client.
//
// A [Store] persists exactly one value, the backend session token, under the fixed key [TokenKey].
// [SQLiteStore] keeps it across restarts; [MemoryStore] forgets it when the process exits.
//
// [Session] is the single owned object that pairs the token with the current [models.UserProfile].
// It is constructed once and passed to every component that needs to read or change whether the
// user is signed in. The profile is never persisted.
package session
