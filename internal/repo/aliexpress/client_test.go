package aliexpress

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppKey    = "512082"
	testAppSecret = "shhh-secret"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &config.Config{
		AliExpress: config.AliExpressConfig{
			AppKey:         testAppKey,
			AppSecret:      testAppSecret,
			BaseURL:        srv.URL,
			TrackingID:     "alibestprice",
			AppSignature:   "alibestprice",
			ShipToCountry:  "US",
			RequestTimeout: 5 * time.Second,
		},
	}

	c, err := NewClient(conf, NewRateLimiter(1000))
	require.NoError(t, err)
	return c
}

// envelope wraps a result payload the way the API does: a JSON document
// encoded as a string inside the method response envelope.
func envelope(t *testing.T, method string, result any) []byte {
	t.Helper()

	inner, err := json.Marshal(result)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		method + "_response": map[string]string{"result": string(inner)},
	})
	require.NoError(t, err)
	return body
}

func TestGetProductDetails(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, methodProductGet, r.PostForm.Get("method"))
		assert.Equal(t, testAppKey, r.PostForm.Get("app_key"))
		assert.Equal(t, "1234567890", r.PostForm.Get("product_ids"))
		assert.Equal(t, "US", r.PostForm.Get("ship_to_country"))

		// The sign must cover every parameter except itself.
		params := map[string]string{}
		for k := range r.PostForm {
			if k != "sign" {
				params[k] = r.PostForm.Get(k)
			}
		}
		assert.Equal(t, Sign(testAppSecret, params), r.PostForm.Get("sign"))

		w.Write(envelope(t, methodProductGet, map[string]any{
			"products": []map[string]any{{
				"title":                 "Wireless Earbuds",
				"target_app_sale_price": map[string]string{"amount": "19.99"},
				"target_original_price": map[string]string{"amount": "39.99"},
				"evaluation_rate":       "4.7",
				"logistics_cost":        map[string]string{"amount": "0"},
			}},
		}))
	})

	details, err := client.GetProductDetails(t.Context(), "https://www.aliexpress.com/item/1234567890.html")
	require.NoError(t, err)

	assert.Equal(t, "1234567890", details.ProductID)
	assert.Equal(t, "Wireless Earbuds", details.Title)
	assert.Equal(t, 19.99, details.Price)
	require.NotNil(t, details.OriginalPrice)
	assert.Equal(t, 39.99, *details.OriginalPrice)
	require.NotNil(t, details.Rating)
	assert.Equal(t, 4.7, *details.Rating)
	require.NotNil(t, details.ShippingCost)
	assert.Equal(t, 0.0, *details.ShippingCost)
}

func TestGetProductDetailsOptionalFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(t, methodProductGet, map[string]any{
			"products": []map[string]any{{
				"title":                 "Plain Item",
				"target_app_sale_price": map[string]string{"amount": "5.00"},
				// original price equal to sale price: no discount
				"target_original_price": map[string]string{"amount": "5.00"},
			}},
		}))
	})

	details, err := client.GetProductDetails(t.Context(), "https://www.aliexpress.com/item/42.html")
	require.NoError(t, err)

	assert.Nil(t, details.OriginalPrice)
	assert.Nil(t, details.Rating)
	assert.Nil(t, details.ShippingCost)
}

func TestGetProductDetailsTitleSanitation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 120)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(t, methodProductGet, map[string]any{
			"products": []map[string]any{{
				"title":                 long,
				"target_app_sale_price": map[string]string{"amount": "1"},
			}},
		}))
	})

	details, err := client.GetProductDetails(t.Context(), "https://www.aliexpress.com/item/42.html")
	require.NoError(t, err)
	assert.Len(t, []rune(details.Title), 100)
	assert.Contains(t, details.Title, "...")
}

func TestGetProductDetailsFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "api error envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error_response":{"code":"15","msg":"Remote service error"}}`)
			},
		},
		{
			name: "missing response key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"something_else": {}}`)
			},
		},
		{
			name: "empty result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"%s_response":{"result":""}}`, methodProductGet)
			},
		},
		{
			name: "result not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"%s_response":{"result":"not json"}}`, methodProductGet)
			},
		},
		{
			name: "empty products list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"%s_response":{"result":"{\"products\":[]}"}}`, methodProductGet)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.GetProductDetails(t.Context(), "https://www.aliexpress.com/item/42.html")
			assert.Error(t, err)
		})
	}
}

func TestGetProductDetailsNoProductID(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.GetProductDetails(t.Context(), "https://www.aliexpress.com/")
	require.Error(t, err)
	assert.False(t, called, "no API call without a product ID")
}

func TestGenerateAffiliateLink(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, methodLinkGenerate, r.PostForm.Get("method"))
		assert.Equal(t, "alibestprice", r.PostForm.Get("tracking_id"))

		w.Write(envelope(t, methodLinkGenerate, map[string]any{
			"promotion_links": []map[string]string{{
				"promotion_link": "https://s.click.aliexpress.com/e/_Dafff",
			}},
		}))
	})

	link := client.GenerateAffiliateLink(t.Context(), "https://www.aliexpress.com/item/42.html")
	assert.Equal(t, "https://s.click.aliexpress.com/e/_Dafff", link)
}

func TestGenerateAffiliateLinkFallsBackToInput(t *testing.T) {
	t.Parallel()

	original := "https://www.aliexpress.com/item/42.html"

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error_response":{"code":"27","msg":"invalid signature"}}`)
			},
		},
		{
			name: "empty links",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"%s_response":{"result":"{\"promotion_links\":[]}"}}`, methodLinkGenerate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			link := client.GenerateAffiliateLink(t.Context(), original)
			assert.Equal(t, original, link)
			assert.NotEmpty(t, link)
		})
	}
}
