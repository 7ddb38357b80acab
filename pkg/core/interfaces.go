package core

// Logger is the leveled logging surface used by the renderer packages.
// *logging.Logger from github.com/op/go-logging satisfies it directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Noticef(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
