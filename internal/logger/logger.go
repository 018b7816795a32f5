package logger

import "go.uber.org/zap"

// New creates the application logger. Development and empty envs get a console logger,
// anything else a JSON production logger tagged with env and service.
func New(env, service string) (*zap.Logger, error) {
	if env == "" || env == "development" {
		return zap.NewDevelopment(zap.Fields(zap.String("service", service)))
	}
	return zap.NewProduction(zap.Fields(
		zap.String("env", env),
		zap.String("service", service),
	))
}
