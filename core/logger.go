package core

// Logger is implemented by the logging services.
// args may hold errors, map[string]interface{} of extra fields and the identity.Session of the caller.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
