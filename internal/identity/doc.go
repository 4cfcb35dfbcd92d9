// Package identity integrates the third-party identity provider used for sign-in.
//
// A [Provider] is loaded once per process ([Loader]), initialized with an [InitConfig] naming the
// client id and the credential callback, and then asked to sign the user in:
//
//   - [Provider.Prompt] tries the provider's own cached session without a browser round trip and
//     reports what happened through a [Notification]. A not-displayed or skipped moment means the
//     caller should fall back to the explicit flow; a dismissed moment never does.
//   - [Provider.RenderButton] runs the explicit flow. For [Google] this is a loopback redirect with
//     PKCE through the system browser.
//
// Either path delivers the credential through the configured callback. [Provider.Cancel] stops any
// outstanding prompt or button flow; no callback fires after it returns.
package identity
