// Package statusapi serves the registry's state over HTTP with Gin.
//
//	GET /services        every configured service with readiness and queued callbacks
//	GET /services/:key   one service, 404 when the key is unknown
//	GET /readyz          200 once every configured service is ready, 503 before
//	GET /livez           aggregated component health
//	GET /version         build metadata
//	GET /events          registry events as Server-Sent Events, when an EventHub is attached
//
// The server speaks HTTP/1.1 and cleartext HTTP/2 and runs as a
// component.Component, so bootstrap starts and stops it with the rest of the
// infrastructure.
package statusapi
