package arcgis

import "time"

// Config holds the connection settings of the remote feature layer.
type Config struct {
	// URL is the portal root, e.g. https://www.arcgis.com.
	URL string `mapstructure:"url" default:"https://www.arcgis.com"`
	// User is the portal user. Anonymous access is used when empty.
	User string `mapstructure:"user"`
	// Password is the portal password.
	Password string `mapstructure:"password"`
	// FeatureLayerID is the portal item id of the feature service, or its REST URL.
	FeatureLayerID string `mapstructure:"feature_layer_id"`
	// LayerIndex selects the layer within the feature service.
	LayerIndex int `mapstructure:"layer_index" default:"0"`
	// Referer is sent when requesting a token.
	Referer string `mapstructure:"referer" default:"floorplan-sync"`
	// PageSize is the number of features requested per query page.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Timeout returns the request timeout, falling back to 60s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
