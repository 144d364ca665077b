package main

import (
	"context"
)

// sessionContext returns a context for the MQTT connection and everything that publishes through it. Cancelling ctx
// cancels the session only until connected is called, so an interrupted dial is aborted while the writes made during
// shutdown (availability, zeroed channels) still reach the broker. The session ends when cancel is called.
func sessionContext(ctx context.Context) (session context.Context, connected func(), cancel context.CancelFunc) {
	session, cancel = context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, cancel)

	return session, func() { stop() }, cancel
}
