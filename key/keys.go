// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// API Endpoint Selection - these keys control which MangaDex environment requests are sent to.
const (
	APIDev = "api.dev"
)

// Authentication - these keys hold the optional OAuth2 personal client registration.
const (
	AuthClientID     = "auth.client_id"
	AuthClientSecret = "auth.client_secret"
	AuthCallbackPort = "auth.callback_port"
)

// Download Behaviour - these keys govern chapter page retrieval.
const (
	DownloadDataSaver  = "download.data_saver"
	DownloadRetries    = "download.retries"
	DownloadReportMDAH = "download.report_mdah"
)

// Diagnostic Logging - these keys configure the persistence and verbosity of application logs.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Presentation - these keys define terminal output behaviour.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
