// Package logger provides structured logging for pipelinekit using zerolog.
//
// Library packages accept a *Logger through options and fall back to Nop, so
// validating a document never writes to the terminal unless the caller asks
// for it. The CLI and HTTP server initialize the global logger from config
// and hand out component loggers with Get.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("migration")
//	log.Debug("applied step", logger.Fields(logger.FieldToVer, 2))
package logger
