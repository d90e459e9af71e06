// Package log builds the application's slog loggers.
//
// Three output formats are supported:
//   - text: human-readable, colored when the terminal allows (charmbracelet/log)
//   - logfmt: key=value lines (slog.TextHandler)
//   - json: one JSON object per line (slog.JSONHandler)
//
// Every handler is wrapped in a RedactHandler. Rule options are supplied by
// the caller and are logged at debug level, so an option such as
// "authToken" must not end up in a log file verbatim.
//
// # Usage
//
//	logger, err := log.NewLogger(os.Stderr, "debug", "text")
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Inside traced code, WithContext annotates the logger with the current
// trace id:
//
//	log.WithContext(ctx).Debug("rule resolved", "rule", id)
package log
