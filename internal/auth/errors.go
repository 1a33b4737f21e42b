package auth

import "errors"

var (
	// ErrBadRequest indicates a malformed or ambiguous submission payload.
	ErrBadRequest = errors.New("auth: bad request")
	// ErrUnauthorized covers bad credentials and bad, expired or consumed codes.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrMailDispatch indicates the one-time code could not be delivered.
	ErrMailDispatch = errors.New("auth: mail dispatch failed")
)
