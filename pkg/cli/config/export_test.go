package config

import "time"

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, postgresDSN string) *Repository {
	return &Repository{backend: backend, projectID: projectID, postgresDSN: postgresDSN}
}

// NewOutboundForTest creates an Outbound config for testing purposes
func NewOutboundForTest(webhookURL, slackBotToken, slackChannel string) *Outbound {
	return &Outbound{webhookURL: webhookURL, slackBotToken: slackBotToken, slackChannel: slackChannel}
}

// NewJobForTest creates a Job config for testing purposes
func NewJobForTest(timezone, configPath string, disableAutoDelivery bool) *Job {
	return &Job{
		timezone:            timezone,
		concurrency:         2,
		jobTimeout:          time.Minute,
		interval:            DefaultJobInterval,
		configPath:          configPath,
		disableAutoDelivery: disableAutoDelivery,
	}
}
