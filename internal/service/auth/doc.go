// Package auth issues and verifies the HMAC-signed bearer tokens that identify
// the owner of every review request. Account management lives elsewhere; a
// token only asserts which owner id the caller acts for.
package auth
