// Package handlers implements the HTTP API of the album server.
//
// The browsing endpoints (/api/coleccion/...) keep the JSON field names
// and route paths of the original front end, so the handlers speak
// Spanish on the wire while the Go types stay English. Collection
// failures degrade to empty successful responses; only the participation
// endpoints return hard errors to the client.
package handlers
