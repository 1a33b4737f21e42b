// Package web carries the static pages served by the auth endpoints.
package web

import _ "embed"

// LoginPage is served by GET /_auth/login.
//
//go:embed login.html
var LoginPage []byte

// AuthorizedPage is served by a successful GET /_auth/check.
//
//go:embed authorized.html
var AuthorizedPage []byte
