// Package services contains the console's application services: the session
// store (login, logout, persisted session, startup restore) and the user
// operations behind the list, detail and form pages.
package services
