package newsletter

// Database is implemented by every record store backend.
type Database interface {
	Open() error
	Close() error
}
