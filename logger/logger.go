package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process wide structured logger
var Log = New("techlympics-api")

// New creates a JSON logger tagged with the service name
func New(serviceName string) *logrus.Entry {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	return log.WithField("service", serviceName)
}

// SetLevel changes the level of the process wide logger
func SetLevel(level string) {
	Log.Logger.SetLevel(parseLevel(level))
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithRequestID adds the request ID to a log entry
func WithRequestID(requestID string) *logrus.Entry {
	return Log.WithField("request_id", requestID)
}

// WithUserID adds the user ID to a log entry
func WithUserID(userID uint) *logrus.Entry {
	return Log.WithField("user_id", userID)
}
