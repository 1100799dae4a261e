// Package system defines the lifecycle contract shared by long-running
// components such as the queue workers and the deadline sweeper.
package system

import "context"

// Service represents a lifecycle-managed component. The runtime starts
// services in dependency order and stops them in reverse.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// StartAll starts services in order, stopping already-started ones when a
// later one fails.
func StartAll(ctx context.Context, services ...Service) error {
	for i, svc := range services {
		if err := svc.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = services[j].Stop(ctx)
			}
			return err
		}
	}
	return nil
}

// StopAll stops services in reverse order, returning the first error seen.
func StopAll(ctx context.Context, services ...Service) error {
	var first error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
