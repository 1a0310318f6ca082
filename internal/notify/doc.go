// Package notify implements the change-notification port of the cache.
//
// Every mutation of a region produces a Notification carrying the region's
// complete, ordered list of values. A Publisher delivers it; concrete
// publishers cover structured logging (Log), a socket.io hub that external
// subscribers connect to (Hub), an upstream socket.io server (SocketIOClient)
// and a raw WebSocket endpoint (WebSocket).
//
// Publishers compose: Fanout sends to all members, and Router picks members
// per region according to a routes file (notifications.yaml).
package notify
