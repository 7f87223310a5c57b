// Package server exposes a live loom document over HTTP.
//
// A Server owns no reconciler state of its own. The document, the fiber
// session driving it and the scheduler loop are handed in by the caller;
// every read or write of the document is marshalled onto the loop
// goroutine with sched.Loop.Do or sched.Loop.Submit.
//
// # Routes
//
//   - GET /            page with the committed markup and the client script
//   - GET /ws          websocket stream of protocol frames
//   - GET /client.js   embedded browser client
//   - GET /snapshot    committed markup of the mount's children
//   - GET /healthz     liveness and connected client count
//   - GET /metrics     Prometheus exposition, when a gatherer is configured
//
// # Connection Lifecycle
//
// On connect the client is registered on the loop and receives a Reset
// frame with the committed markup. After every commit the server takes
// the document's op log and broadcasts it as one Mutations frame. Event
// frames from clients are dispatched on the loop at the node they name.
//
// Each connection runs two goroutines:
//   - readLoop: decodes frames and submits events to the loop
//   - writeLoop: drains the send queue and sends heartbeat pings
package server
