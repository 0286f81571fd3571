package core

// Logger reports application events locally and, depending on the
// implementation, to an external monitoring service.
//
// args may carry anything worth logging alongside the message: an error,
// a map of extra values, the acting session identity...
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
