package util

import "sync"

// WriteBufferPool is shared by every WebSocket connection the server
// accepts.  Idle sessions then hold no write buffer between frames.
// The pool has no New func; the WebSocket library allocates on a miss.
var WriteBufferPool = &sync.Pool{}
