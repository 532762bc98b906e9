// Package view holds the client-side state for a search session and derives
// the filtered, sorted product list that is shown to the user.
package view
