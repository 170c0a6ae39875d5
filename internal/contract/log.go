package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It writes to stderr so that stdout stays
// reserved for command output.
var Logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetVerbose switches the logger to debug level output.
func SetVerbose(verbose bool) {
	if verbose {
		Logger.SetLevel(logrus.DebugLevel)
		return
	}
	Logger.SetLevel(logrus.WarnLevel)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.WithError(err).Warn(msg)
}

// LogInfo logs a progress message with structured fields.
func LogInfo(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Info(msg)
}

// LogDebug logs a detailed message with structured fields.
func LogDebug(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Debug(msg)
}
