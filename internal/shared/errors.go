package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrNoDownloadInfo     = fmt.Errorf("no download info available")

	// Sync errors. ErrCatalogUnreadable, ErrRemoteUnavailable and ErrSyncInProgress abort a run;
	// ErrTrackAcquisition is recorded per track and never aborts it.
	ErrCatalogUnreadable    = fmt.Errorf("catalog unreadable")
	ErrRemoteUnavailable    = fmt.Errorf("remote playlist unavailable")
	ErrSyncInProgress       = fmt.Errorf("another sync is already running for this directory")
	ErrTrackAcquisition     = fmt.Errorf("track acquisition failed")
	ErrUnsupportedContainer = fmt.Errorf("unsupported audio container")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
