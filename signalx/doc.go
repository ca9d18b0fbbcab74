// Package signalx ties process signals to context cancellation.
package signalx
