// Package pager holds the errors shared by the pager packages.
//
// The packages build on each other:
//
//   - dialect and dialect/sql name the supported SQL dialects and open connections
//   - convert turns parameter values into driver arguments
//   - mapper parses statement templates and binds them to parameter objects
//   - executor runs bound statements through a chain of interceptors
//   - paging is the interceptor that counts and pages a statement
//   - config loads all of the above from a YAML file
package pager
