// Package http contains the HTTP transport layer: chi handlers that parse
// requests, call services, and delegate every failure to the fault handler
// for mapping into RFC 7807 problem responses.
package http
