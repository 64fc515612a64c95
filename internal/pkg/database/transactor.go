package database

import "context"

// Transactor runs fn inside a single database transaction. The context passed
// to fn carries the transaction; repositories called with it join the
// transaction. fn's error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
