// Package common provides shared constants, types, utilities, and the
// application logger used throughout piactl.
//
// This package is the foundation for cross-cutting concerns:
//
//   - Constants: naming convention for PIA profiles, timeouts, file names
//   - Errors: sentinel errors for consistent error handling across packages
//   - Logger: leveled logging with optional rotating file output
//   - Utils: config/data directory resolution and small helpers
//
// # Usage
//
//	import "github.com/dagrha/piactl/common"
//
//	// Use constants
//	name := common.ProfilePrefix + serverName
//
//	// Use logger
//	common.LogInfo("Activating %s", name)
//
//	// Check errors
//	if errors.Is(err, common.ErrNoReachableServer) {
//	    // Every probe failed
//	}
package common
