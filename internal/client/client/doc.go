// Package client contains the console's transport to the user administration
// REST API and the local database bootstrap.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface): login and logout,
//     paginated user listing, user CRUD, activation toggles and password
//     regeneration.
//  2. A net/http implementation (see HTTPClient) that attaches the bearer
//     token and a fresh X-Request-Id to every call and normalizes error
//     bodies into *APIError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Both server error shapes, {"message": ...} and {"errors": [{"message": ...}]},
// become a single *APIError. Callers match conditions with errors.Is:
// ErrUnauthorized (401/403), ErrNotFound (404) and ErrUnavailable
// (connection failures and 5xx).
package client
