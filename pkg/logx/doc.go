// Package logx wraps zerolog behind a small Field-based API.
//
// Components hold a logx.Logger value; the zero value is a safe no-op,
// so optional logging never needs nil checks.
package logx
