// Package logger provides the structured logging interface used across
// wikiassets.
//
// It wraps zerolog and writes human-readable lines to the console and, when a
// file is configured, to an appended log file at the same time:
//
//	cfg := &config.LoggingConfig{
//	    Level:   "info",
//	    File:    "wikiassets.log",
//	    Console: true,
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//
//	log := logger.GetLogger().WithField("component", "lister")
//	log.InfoWithFields("Fetched category page", map[string]interface{}{
//	    "members": 50,
//	    "page":    3,
//	})
//
// Components receive a Logger at construction. NewNopLogger and
// NewTestLogger are available for tests.
package logger
