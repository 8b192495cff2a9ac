// Package logging builds the slog loggers used by both stages: a
// human-oriented console handler for the terminal and a JSON handler
// for machine consumption, optionally teeing into a per-run log file.
package logging
