package logger

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.Logger = getLogger()

// prod gets the JSON production encoder; every other ENV gets the
// human-readable development logger with debug enabled.
func getLogger() *zap.Logger {
	var (
		log *zap.Logger
		err error
	)

	if os.Getenv("ENV") == "prod" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}

	if err != nil {
		panic("unable to build zap logger: " + err.Error())
	}
	return log
}

func Get() *zap.Logger {
	return Log
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

// Fatal is a variable so tests can intercept process exits.
var Fatal = func(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}
