// Package cli provides the interactive user administration console.
//
// It wires configuration, the local session store, the REST services and a
// REPL. On start a persisted session is restored when its token is still
// valid; otherwise the login page is shown.
//
// Pages:
//   - Login: validated email/password form, kept populated for retries
//   - User list: debounced search, status filter, refresh, and confirmed
//     deactivate/reactivate row actions
//   - User detail: read-only view with admin actions
//   - User form: create and edit, including the account status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
