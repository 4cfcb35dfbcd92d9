// Package auth implements the sign-in lifecycle on top of an identity [identity.Provider], the
// backend credential exchange, and the owned [session.Session].
//
// The [Controller] moves through
//
//	uninitialized → initializing → ready → {signed_out, signed_in, error}
//
// with two sign-in states in between: prompting (the provider's silent prompt is outstanding) and
// button_fallback (the prompt was not shown or was skipped, so the explicit flow is running). The
// fallback is a normal path, not an error.
//
// [Controller.SignIn] wraps the provider's callback API in a single-resolution attempt: the first of
// a credential exchange, a decline, a provider failure or context cancellation settles it.
// [Controller.VerifyAuth] is the pre-flight check used before authenticated actions; a false return
// means the session is gone and the caller must return to the signed-out entry screen.
package auth
