// Package lifecycle turns process lifecycle events into registry operations.
//
// Events arrive as values on a channel (see Dispatcher.Run) or are handed to
// Dispatcher.Handle directly. A Startup event creates, seeds and announces
// each named region in order. A Shutdown event clears every region. Both are
// best-effort: a failing region is recorded in the Report and the batch moves
// on to the next one.
package lifecycle
