// Package cnlopt drives the nlopt C library through cgo. It is compiled only
// with the nlopt build tag and cgo enabled, and needs nlopt's pkg-config
// entry:
//
//	go build -tags nlopt ./...
//
// Importing the package registers the backend under the name "nlopt". Without
// the tag the package is empty and the import does nothing.
package cnlopt
