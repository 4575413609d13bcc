package constant

// MangaDex API hosts. The development variants are selected through the
// api.dev configuration key (or the MANGASAN_API_DEV environment variable).
const (
	APIBaseURL    = "https://api.mangadex.org"
	APIDevBaseURL = "https://api.mangadex.dev"

	AuthBaseURL    = "https://auth.mangadex.org"
	AuthDevBaseURL = "https://auth.mangadex.dev"

	UploadsBaseURL = "https://uploads.mangadex.org"
)
