package smrender

// Logger is the minimal logging contract the core depends on. Package
// rlog provides the concrete, colorized implementation used by
// cmd/smrender; tests typically pass a nil Logger or a small stub.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
