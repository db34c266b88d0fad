package arcgis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/utils"
)

// QueryParams describes a feature query against the layer.
type QueryParams struct {
	Where          string
	OutFields      []string
	ReturnGeometry bool
	ReturnZ        bool
	// OutSR is the output spatial reference; zero keeps the layer's own.
	OutSR int
}

type queryPage struct {
	Features []struct {
		Attributes map[string]any `json:"attributes"`
		Geometry   *esriGeometry  `json:"geometry"`
	} `json:"features"`
	ExceededTransferLimit bool `json:"exceededTransferLimit"`
	HasZ                  bool `json:"hasZ"`
}

type layerInfo struct {
	Name   string `json:"name"`
	Fields []struct {
		Name   string `json:"name"`
		Domain *struct {
			Type        string `json:"type"`
			CodedValues []struct {
				Name string `json:"name"`
				Code any    `json:"code"`
			} `json:"codedValues"`
		} `json:"domain"`
	} `json:"fields"`
}

// call sends an authorized request, retrying once with a fresh token when the current one
// was rejected.
func (c *Client) call(ctx context.Context, method, endpoint string, params url.Values, target any) error {
	for attempt := 0; ; attempt++ {
		if err := c.authorize(ctx, params); err != nil {
			return err
		}

		var err error
		if method == http.MethodGet {
			err = c.get(ctx, endpoint, params, target)
		} else {
			err = c.post(ctx, endpoint, params, target)
		}

		var apiErr *APIError
		if attempt == 0 && c.cfg.User != "" && errors.As(err, &apiErr) && apiErr.tokenExpired() {
			c.invalidateToken()
			continue
		}
		return err
	}
}

// Query runs q against the layer, following pagination until the server reports no more
// features.
func (c *Client) Query(ctx context.Context, q QueryParams) ([]reconcile.Feature, error) {
	layer, err := c.LayerURL(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	var features []reconcile.Feature
	for offset := 0; ; {
		form := url.Values{}
		form.Set("where", q.Where)
		form.Set("outFields", strings.Join(q.OutFields, ","))
		form.Set("returnGeometry", strconv.FormatBool(q.ReturnGeometry))
		form.Set("returnZ", strconv.FormatBool(q.ReturnZ))
		if q.OutSR > 0 {
			form.Set("outSR", strconv.Itoa(q.OutSR))
		}
		form.Set("resultOffset", strconv.Itoa(offset))
		form.Set("resultRecordCount", strconv.Itoa(pageSize))

		var page queryPage
		if err := c.call(ctx, http.MethodPost, layer+"/query", form, &page); err != nil {
			return nil, fmt.Errorf("query %q at offset %d: %w", q.Where, offset, err)
		}

		for _, f := range page.Features {
			feature := reconcile.Feature{
				Attributes: reconcile.Attributes(utils.NormalizeAttributes(f.Attributes)),
			}
			if q.ReturnGeometry {
				feature.Geometry = f.Geometry.toGeom(page.HasZ)
			}
			features = append(features, feature)
		}

		if !page.ExceededTransferLimit || len(page.Features) == 0 {
			break
		}
		offset += len(page.Features)
	}

	return features, nil
}

// QueryAll returns every feature matching where with the requested fields and no geometry.
func (c *Client) QueryAll(ctx context.Context, where string, fields []string) ([]reconcile.Feature, error) {
	return c.Query(ctx, QueryParams{Where: where, OutFields: fields})
}

// RecentFilter selects features edited within the last days days.
func RecentFilter(days int) string {
	return fmt.Sprintf("EditDate >= CURRENT_TIMESTAMP - INTERVAL '%d' DAY", days)
}

// QueryRecent returns the features edited within sinceDays days, with Z-aware geometry in outSR.
func (c *Client) QueryRecent(ctx context.Context, sinceDays int, fields []string, outSR int) ([]reconcile.Feature, error) {
	if sinceDays < 0 {
		return nil, fmt.Errorf("day interval must not be negative, got %d", sinceDays)
	}
	return c.Query(ctx, QueryParams{
		Where:          RecentFilter(sinceDays),
		OutFields:      fields,
		ReturnGeometry: true,
		ReturnZ:        true,
		OutSR:          outSR,
	})
}

// FieldDomains reads the layer metadata and returns its coded-value domains.
func (c *Client) FieldDomains(ctx context.Context) (reconcile.DomainMap, error) {
	layer, err := c.LayerURL(ctx)
	if err != nil {
		return nil, err
	}

	var info layerInfo
	if err := c.call(ctx, http.MethodGet, layer, url.Values{}, &info); err != nil {
		return nil, fmt.Errorf("read layer metadata: %w", err)
	}

	domains := reconcile.NewDomainMap()
	for _, field := range info.Fields {
		if field.Domain == nil || field.Domain.Type != "codedValue" {
			continue
		}
		for _, cv := range field.Domain.CodedValues {
			domains.Add(field.Name, utils.NormalizeNumber(cv.Code), cv.Name)
		}
	}
	return domains, nil
}
