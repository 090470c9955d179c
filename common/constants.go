package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the tool.
	AppName = "piactl"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "piactl"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	LogFileName     = "piactl.log"
	HistoryFileName = "history.db"
)

// PIA naming convention for NetworkManager connection profiles.
// Every profile generated by piactl is named "PIA - <server name>";
// US servers carry the "US" marker inside the server name.
const (
	ProfilePrefix = "PIA - "
	USMarker      = "US"
)

// Default timeouts and probe parameters.
const (
	// FetchTimeout bounds the server-list and certificate downloads.
	FetchTimeout = 15 * time.Second
	// ProbeTimeout bounds a single latency probe, all echoes included.
	ProbeTimeout = 5 * time.Second
	// EchoCount is the number of echo requests per probe target.
	EchoCount = 3
	// ProbeConcurrency is the maximum number of in-flight probes.
	ProbeConcurrency = 16
	// ActivateTimeout bounds an nmcli activation call.
	ActivateTimeout = 30 * time.Second
)
