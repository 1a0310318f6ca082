// Package app wires the cache together and runs it. It builds the loaders
// and notifiers named in the configuration file, owns the registry and the
// lifecycle dispatcher, serves the HTTP API and turns process start and stop
// into Startup and Shutdown events.
package app
