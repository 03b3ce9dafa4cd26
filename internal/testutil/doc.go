// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing core model objects (seeds, boards,
// sessions). The builders drive the real core.Board and core.Session APIs
// so constructed fixtures carry valid lifecycle state. They are not
// intended for production usage.
package testutil
