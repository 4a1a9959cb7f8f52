// Package app defines the runtime contract shared by cmd/* entrypoints.
package app

// Runner is a long-lived process component. Run blocks until the process
// is asked to stop or fails.
type Runner interface {
	Run() error
}
