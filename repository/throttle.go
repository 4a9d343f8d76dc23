package repository

import "context"

// AttemptCounter counts failed-prone operations (logins) per key inside a fixed window.
type AttemptCounter interface {
	// Hit records one attempt and returns the number of attempts in the current window.
	Hit(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}
