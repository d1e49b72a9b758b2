// Package logging builds the server's zap logger.
//
// Production mode writes JSON lines; development mode writes colored console
// output with stack traces on errors. Components take a named child:
//
//	log, err := logging.New(logging.DefaultConfig())
//	reg := log.Component("visitor")
//	shell := log.Session("shell", sid.String())
//	shell.Info("window opened", zap.String("panel", "projects"))
package logging
