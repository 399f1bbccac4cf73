package geocode

// Config holds configuration for the address search proxy.
type Config struct {
	// URL is the free-search endpoint of the locatieserver.
	URL string `mapstructure:"url" default:"https://api.pdok.nl/bzk/locatieserver/search/v3_1/free"`
	// Rows is the maximum number of suggestions returned per query.
	Rows int `mapstructure:"rows" default:"5"`
	// TimeoutSeconds bounds the upstream request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
