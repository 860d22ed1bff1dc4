// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package markers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relabs-tech/geo_scene/internal/geo"
)

// ErrCountryNotFound is returned when the lookup service has no entry for a code.
var ErrCountryNotFound = errors.New("country not found")

// DefaultCountryCodes is the set of countries placed on the globe when none
// are configured.
var DefaultCountryCodes = []string{
	"FR", "US", "BR", "JP", "AU", "ZA", "IN", "CA", "AR", "EG",
	"CN", "RU", "MX", "NG", "ID", "DE", "GB", "IT", "ES", "KE",
	"NZ", "CL", "PE", "CO", "MA", "TR", "SA", "KR", "TH", "NO",
}

// countryDTO is the subset of the restcountries v3.1 record we read.
type countryDTO struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	LatLng []float64 `json:"latlng"`
	Flags  struct {
		PNG string `json:"png"`
	} `json:"flags"`
	CCA2 string `json:"cca2"`
}

// CountryClient fetches country centroids from a restcountries-compatible API.
type CountryClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewCountryClient creates a client for baseURL (for example
// https://restcountries.com/v3.1).
func NewCountryClient(baseURL string, log zerolog.Logger) *CountryClient {
	return &CountryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Lookup fetches one country by ISO alpha-2 code and returns it as a marker.
func (c *CountryClient) Lookup(ctx context.Context, code string) (Marker, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Marker{}, fmt.Errorf("empty country code: %w", ErrCountryNotFound)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/alpha/"+url.PathEscape(code), nil)
	if err != nil {
		return Marker{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Marker{}, fmt.Errorf("country request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Marker{}, fmt.Errorf("%s: %w", code, ErrCountryNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Marker{}, fmt.Errorf("country lookup returned status %d", resp.StatusCode)
	}

	// The alpha endpoint answers with a one-element array.
	var records []countryDTO
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return Marker{}, fmt.Errorf("failed to decode country %s: %w", code, err)
	}
	if len(records) == 0 {
		return Marker{}, fmt.Errorf("%s: %w", code, ErrCountryNotFound)
	}
	rec := records[0]
	if len(rec.LatLng) < 2 {
		return Marker{}, fmt.Errorf("country %s has no latlng", code)
	}

	id := rec.CCA2
	if id == "" {
		id = code
	}
	return Marker{
		ID:    "country-" + id,
		Point: geo.NewPoint(rec.LatLng[0], rec.LatLng[1]),
		Label: rec.Name.Common,
		Kind:  KindCountry,
		Flag:  rec.Flags.PNG,
	}, nil
}

// LoadAll looks up codes one at a time, waiting pacing between requests,
// and calls fn for every country found. Failed lookups are logged and
// skipped. It returns the number of markers delivered, or ctx.Err() if the
// context ends first.
func (c *CountryClient) LoadAll(ctx context.Context, codes []string, pacing time.Duration, fn func(Marker)) (int, error) {
	loaded := 0
	for i, code := range codes {
		if i > 0 && pacing > 0 {
			select {
			case <-ctx.Done():
				return loaded, ctx.Err()
			case <-time.After(pacing):
			}
		}
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		m, err := c.Lookup(ctx, code)
		if err != nil {
			c.log.Warn().Err(err).Str("code", code).Msg("country lookup failed")
			continue
		}
		fn(m)
		loaded++
	}
	return loaded, nil
}
