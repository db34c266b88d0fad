// Package arcgis is a small ArcGIS REST client for reading one feature layer.
//
// It authenticates against the portal with generateToken, resolves the portal item to its
// feature service, and runs paginated queries. Attributes are decoded with json.Number so that
// integer codes and epoch timestamps stay integral; geometries are decoded into go-geom types,
// keeping Z when the layer has it.
//
// The Client implements reconcile.Source.
//
//	client := arcgis.NewClient(cfg.GIS)
//	features, err := client.QueryRecent(ctx, 7, []string{"*"}, 31982)
package arcgis
