package aliexpress

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/alibestprice/price-bot/internal/linkparse"
	"github.com/alibestprice/price-bot/internal/models"
	"github.com/alibestprice/price-bot/pkg/util"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	methodProductGet   = "aliexpress.ds.product.get"
	methodLinkGenerate = "aliexpress.affiliate.link.generate"

	productFields = "title,sale_price,original_price,discount,evaluation_rate," +
		"target_app_sale_price,target_original_price,ship_to_country," +
		"delivery_time,logistics_cost"

	maxTitleLength   = 100
	titlePlaceholder = "Unknown Product"
)

type Client interface {
	// GetProductDetails looks up pricing metadata for a product URL.
	// Every failure mode (unextractable ID, transport error, API error
	// payload, malformed envelope) comes back as an error; nothing here
	// is fatal to the caller.
	GetProductDetails(ctx context.Context, productURL string) (*models.ProductDetails, error)

	// GenerateAffiliateLink converts a product URL into a monetized
	// link. It never fails outward: on any error the original URL is
	// returned unchanged.
	GenerateAffiliateLink(ctx context.Context, productURL string) string
}

type client struct {
	http    *resty.Client
	limiter *RateLimiter
	conf    config.AliExpressConfig
	metrics *prometheus.HistogramVec
}

func NewClient(conf *config.Config, limiter *RateLimiter) (Client, error) {
	metrics, err := util.GetHistogramVec("aliexpress_request_duration_seconds", "method", "status")
	if err != nil {
		return nil, fmt.Errorf("register api metrics: %w", err)
	}

	return &client{
		http:    util.NewRestyClient().SetTimeout(conf.AliExpress.RequestTimeout),
		limiter: limiter,
		conf:    conf.AliExpress,
		metrics: metrics,
	}, nil
}

func (c *client) GetProductDetails(ctx context.Context, productURL string) (*models.ProductDetails, error) {
	productID := linkparse.ExtractProductID(ctx, productURL)
	if productID == "" {
		return nil, fmt.Errorf("no product ID in url %q", productURL)
	}

	params := map[string]string{
		"product_ids":     productID,
		"ship_to_country": c.conf.ShipToCountry,
		"fields":          productFields,
	}

	result, err := c.invoke(ctx, methodProductGet, params)
	if err != nil {
		return nil, fmt.Errorf("product get: %w", err)
	}

	var payload struct {
		Products []productPayload `json:"products"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil, fmt.Errorf("decode products result: %w", err)
	}
	if len(payload.Products) == 0 {
		return nil, fmt.Errorf("no products for ID %s", productID)
	}

	return mapProduct(productID, payload.Products[0]), nil
}

func (c *client) GenerateAffiliateLink(ctx context.Context, productURL string) string {
	params := map[string]string{
		"source":        "aliexpress",
		"app_signature": c.conf.AppSignature,
		"tracking_id":   c.conf.TrackingID,
		"urls":          productURL,
	}

	result, err := c.invoke(ctx, methodLinkGenerate, params)
	if err != nil {
		log.Warnf(ctx, "affiliate link generation failed, keeping original URL: %v", err)
		return productURL
	}

	var payload struct {
		PromotionLinks []struct {
			PromotionLink string `json:"promotion_link"`
		} `json:"promotion_links"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		log.Warnf(ctx, "decode promotion links failed, keeping original URL: %v", err)
		return productURL
	}
	if len(payload.PromotionLinks) == 0 || payload.PromotionLinks[0].PromotionLink == "" {
		log.Warnf(ctx, "no promotion links for %s, keeping original URL", productURL)
		return productURL
	}

	return payload.PromotionLinks[0].PromotionLink
}

// invoke issues one signed API call and unwraps the response envelope
// down to the method's result payload (a JSON document encoded as a
// string inside the envelope).
func (c *client) invoke(ctx context.Context, method string, params map[string]string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	form := map[string]string{
		"app_key":     c.conf.AppKey,
		"method":      method,
		"format":      "json",
		"v":           "2.0",
		"sign_method": "md5",
		"timestamp":   strconv.FormatInt(time.Now().UnixMilli(), 10),
	}
	for k, v := range params {
		form[k] = v
	}
	form["sign"] = Sign(c.conf.AppSecret, form)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(c.conf.BaseURL)
	c.observe(method, resp, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", method, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("request %s: status %d: %s", method, resp.StatusCode(), resp.String())
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if raw, ok := envelope["error_response"]; ok {
		var apiErr struct {
			Code json.RawMessage `json:"code"`
			Msg  string          `json:"msg"`
		}
		if err := json.Unmarshal(raw, &apiErr); err != nil {
			return nil, fmt.Errorf("%s: malformed error_response: %w", method, err)
		}
		return nil, fmt.Errorf("%s: api error %s: %s", method, apiErr.Code, apiErr.Msg)
	}

	raw, ok := envelope[method+"_response"]
	if !ok {
		return nil, fmt.Errorf("%s: missing response key", method)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%s: decode response body: %w", method, err)
	}
	if body.Result == "" {
		return nil, fmt.Errorf("%s: empty result", method)
	}

	return json.RawMessage(body.Result), nil
}

func (c *client) observe(method string, resp *resty.Response, err error, elapsed time.Duration) {
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode())
	}
	c.metrics.WithLabelValues(method, status).Observe(elapsed.Seconds())
}

type money struct {
	Amount flexNumber `json:"amount"`
}

type productPayload struct {
	Title               string      `json:"title"`
	TargetAppSalePrice  money       `json:"target_app_sale_price"`
	TargetOriginalPrice money       `json:"target_original_price"`
	EvaluationRate      *flexNumber `json:"evaluation_rate"`
	LogisticsCost       *money      `json:"logistics_cost"`
}

func mapProduct(productID string, p productPayload) *models.ProductDetails {
	details := &models.ProductDetails{
		ProductID: productID,
		Title:     sanitizeTitle(p.Title),
		Price:     float64(p.TargetAppSalePrice.Amount),
	}

	if orig := float64(p.TargetOriginalPrice.Amount); orig > 0 && orig > details.Price {
		details.OriginalPrice = &orig
	}
	if p.EvaluationRate != nil {
		rating := float64(*p.EvaluationRate)
		details.Rating = &rating
	}
	if p.LogisticsCost != nil {
		cost := float64(p.LogisticsCost.Amount)
		details.ShippingCost = &cost
	}

	return details
}

func sanitizeTitle(title string) string {
	if title == "" {
		return titlePlaceholder
	}
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength-3]) + "..."
	}
	return title
}

// flexNumber decodes a JSON number that the API may serialize either as
// a bare number or as a quoted string.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexNumber(v)
	return nil
}
