package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Digikey looks parts up through the Digi-Key product search API using
// OAuth2 client-credentials tokens.
type Digikey struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewDigikey creates a Digi-Key source with the given API credentials.
func NewDigikey(clientID, clientSecret string) *Digikey {
	return &Digikey{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      "https://api.digikey.com",
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (d *Digikey) Name() string { return "digikey" }

type digikeyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type digikeySearchResponse struct {
	Products []struct {
		ManufacturerProductNumber string `json:"ManufacturerProductNumber"`
		Manufacturer              struct {
			Name string `json:"Name"`
		} `json:"Manufacturer"`
		ProductVariations []struct {
			DigiKeyProductNumber string `json:"DigiKeyProductNumber"`
		} `json:"ProductVariations"`
	} `json:"Products"`
}

// Lookup searches by keyword and returns the first product.
func (d *Digikey) Lookup(ctx context.Context, partNumber string) (PartInfo, error) {
	token, err := d.accessToken(ctx)
	if err != nil {
		return PartInfo{}, fmt.Errorf("digikey auth: %w", err)
	}

	body := fmt.Sprintf(`{"Keywords":%q,"Limit":1}`, partNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/products/v4/search/keyword", strings.NewReader(body))
	if err != nil {
		return PartInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", d.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return PartInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PartInfo{}, fmt.Errorf("digikey search: status %d", resp.StatusCode)
	}

	var out digikeySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PartInfo{}, err
	}
	if len(out.Products) == 0 {
		return PartInfo{}, ErrNoMatch
	}
	p := out.Products[0]
	info := PartInfo{
		Manufacturer: p.Manufacturer.Name,
		MPN:          p.ManufacturerProductNumber,
		Supplier:     "Digi-Key",
	}
	if len(p.ProductVariations) > 0 {
		info.SPN = p.ProductVariations[0].DigiKeyProductNumber
	}
	return info, nil
}

// accessToken returns a cached token, refreshing it when expired.
func (d *Digikey) accessToken(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.token != "" && time.Now().Before(d.expires) {
		return d.token, nil
	}

	form := url.Values{
		"client_id":     {d.clientID},
		"client_secret": {d.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token: status %d", resp.StatusCode)
	}

	var tok digikeyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	d.token = tok.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	d.expires = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return d.token, nil
}
