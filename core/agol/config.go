package agol

// Config holds configuration for the feature service client.
type Config struct {
	// Username is the portal account used for the credential exchange.
	Username string `mapstructure:"username" default:""`
	// Password is the portal account password.
	Password string `mapstructure:"password" default:""`
	// Portal is the base address of the portal hosting the token endpoint.
	Portal string `mapstructure:"portal" default:"https://www.arcgis.com"`
	// Referer is sent with the credential exchange request.
	Referer string `mapstructure:"referer" default:"https://www.arcgis.com"`
	// ProjectsLayerURL is the endpoint of the projects feature layer.
	ProjectsLayerURL string `mapstructure:"projects_layer_url" default:""`
	// WorkAreasLayerURL is the endpoint of the work areas feature layer.
	WorkAreasLayerURL string `mapstructure:"workareas_layer_url" default:""`
	// DomainsServiceURL is the feature server hosting the domain value tables.
	// The layer/table ids are detected at runtime from the service metadata.
	DomainsServiceURL string `mapstructure:"domains_service_url" default:""`
	// RelationKeyField relates projects to their work areas.
	RelationKeyField string `mapstructure:"relation_key_field" default:"Projectnr"`
	// TokenTimeoutSeconds bounds the credential exchange call.
	TokenTimeoutSeconds int `mapstructure:"token_timeout_seconds" default:"30"`
	// RequestTimeoutSeconds bounds every other call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"60"`
}
