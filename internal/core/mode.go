// Package core is the orchestration layer.  It composes transports
// and capabilities into complete operational modes and provides a
// builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode is one complete way of running yggdrasil: the relay server or
// the line client.  Each mode owns its lifecycle from the first socket
// to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
