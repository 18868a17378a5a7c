// Package session
// Author: momentics <momentics@gmail.com>
//
// Session bookkeeping for the parser layer.
// Registry is the only translation from the integer an engine can carry back
// to the session that owns it. Lifecycle is the per-session state machine.
//
// Register and Unregister complete without suspension; engines call back only
// synchronously inside a feed step, so a slot is never resolved after the
// session behind it has been unregistered.

package session
