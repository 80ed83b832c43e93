package health

import "context"

// DBPinger verifies content store connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BackendChecker verifies the generative backend, when one is configured.
type BackendChecker interface {
	HealthCheck(ctx context.Context) error
}
