// Package logger builds *slog.Logger instances for the filevault processes.
//
// New returns a logger configured by functional options: output format (text
// or json), minimum level, static attributes attached to every record and
// ContextExtractor callbacks that pull request-scoped values (such as the
// request id) out of context.Context at log time.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "filevault-api"),
//		logger.WithLevelName(cfg.LogLevel),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "file stored",
//		logger.UserID(userID),
//		logger.FileID(node.ID),
//	)
//
// Attribute helpers in attr.go keep key names consistent between the API and
// the worker so that log queries can follow a file from upload to thumbnail.
package logger
