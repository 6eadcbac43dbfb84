package ports

// Sink receives human-readable progress lines from pipeline branches. All
// components share one sink per request; implementations must keep each
// appended line intact under concurrent writers, though relative ordering
// between writers is best-effort.
type Sink interface {
	Appendf(format string, args ...any)
}
