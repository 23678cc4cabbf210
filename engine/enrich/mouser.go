package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Mouser looks parts up through the Mouser part number search API.
type Mouser struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewMouser creates a Mouser source with the given API key.
func NewMouser(apiKey string) *Mouser {
	return &Mouser{
		apiKey:  apiKey,
		baseURL: "https://api.mouser.com",
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (m *Mouser) Name() string { return "mouser" }

type mouserSearchResponse struct {
	SearchResults struct {
		Parts []struct {
			Manufacturer         string `json:"Manufacturer"`
			ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
			MouserPartNumber     string `json:"MouserPartNumber"`
		} `json:"Parts"`
	} `json:"SearchResults"`
}

// Lookup searches by part number and returns the first part.
func (m *Mouser) Lookup(ctx context.Context, partNumber string) (PartInfo, error) {
	body := fmt.Sprintf(`{"SearchByPartRequest":{"mouserPartNumber":%q}}`, partNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/api/v1/search/partnumber?apiKey="+m.apiKey, strings.NewReader(body))
	if err != nil {
		return PartInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return PartInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PartInfo{}, fmt.Errorf("mouser search: status %d", resp.StatusCode)
	}

	var out mouserSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PartInfo{}, err
	}
	if len(out.SearchResults.Parts) == 0 {
		return PartInfo{}, ErrNoMatch
	}
	p := out.SearchResults.Parts[0]
	return PartInfo{
		Manufacturer: p.Manufacturer,
		MPN:          p.ManufacturerPartNumber,
		Supplier:     "Mouser",
		SPN:          p.MouserPartNumber,
	}, nil
}
