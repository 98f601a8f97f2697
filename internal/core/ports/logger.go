package ports

// Logger defines the narrow logging surface every adapter that can fail
// non-fatally (cache I/O, lock contention) logs through, instead of the
// stdlib log package.
//
//go:generate go run go.uber.org/mock/mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error)
}
