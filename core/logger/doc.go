// Package logger builds the zap logger shared by the commands and the HTTP server.
//
// Level selects debug (development config) or production defaults and the minimum
// enabled level; Format selects console or json encoding. WithRayID attaches the
// request ray_id set by the rayid middleware.
//
//	log, _ := logger.New(&cfg.Log)
//	logger.WithRayID(log, c).Error("Preview failed", zap.Error(err))
package logger
