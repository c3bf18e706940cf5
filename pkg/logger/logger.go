package logger

import (
	"go.uber.org/zap"
)

var NOOPLogger = zap.NewNop().Sugar()

// New builds a human readable logger for local runs and a JSON production
// logger everywhere else.
func New(appEnv string) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)

	if appEnv == "local" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return l.Sugar().With("app_env", appEnv), nil
}
