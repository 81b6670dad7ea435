// Package logger provides structured logging for the harness using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields such as the run ID
// and PID of the child process being observed.
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
//	log := logger.Get("process")
//	log.Info("process created", logger.Fields(logger.FieldPID, pid))
package logger
