// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package lifecycle

// Kind discriminates lifecycle events.
type Kind string

const (
	KindStartup  Kind = "startup"
	KindShutdown Kind = "shutdown"
)

// Event is anything the dispatcher can receive. Kinds it does not know are
// ignored.
type Event interface {
	Kind() Kind
}

// Startup asks for the listed regions to be created and seeded, in order.
type Startup struct {
	Regions []string
}

// Kind implements Event.
func (Startup) Kind() Kind { return KindStartup }

// Shutdown asks for every region to be cleared.
type Shutdown struct{}

// Kind implements Event.
func (Shutdown) Kind() Kind { return KindShutdown }
