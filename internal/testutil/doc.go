// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing turns and asserting on log output.
// They are not intended for production usage.
package testutil
