package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/harvestlane/veggiebox-backend/pkg/config"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

const accessTokenHeader = "X-Shopify-Access-Token"

var (
	errShopNameRequired    = errors.New("shopify shop name is required")
	errAccessTokenRequired = errors.New("shopify access token is required")
	errLoggerRequired      = errors.New("shopify logger is required")
)

// Client exposes the platform's admin REST and GraphQL surfaces with
// centralized auth, logging and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logger.Logger
}

// New validates the credentials and builds the platform client.
func New(cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	if strings.TrimSpace(cfg.ShopName) == "" {
		return nil, errShopNameRequired
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errAccessTokenRequired
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL(),
		token:      token,
		logger:     logg,
	}, nil
}

// FetchProducts returns catalog products, optionally filtered by title.
func (c *Client) FetchProducts(ctx context.Context, title string) ([]Product, error) {
	query := url.Values{}
	if title != "" {
		query.Set("title", title)
	}
	c.log(ctx, "request", "fetch_products", map[string]any{"title": title})

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products.json", query, nil, &payload); err != nil {
		return nil, err
	}

	c.log(ctx, "response", "fetch_products", map[string]any{"count": len(payload.Products)})
	return payload.Products, nil
}

// FetchProduct returns a single catalog product by its external id.
func (c *Client) FetchProduct(ctx context.Context, productID int64) (*Product, error) {
	c.log(ctx, "request", "fetch_product", map[string]any{"product_id": productID})

	var payload struct {
		Product *Product `json:"product"`
	}
	path := fmt.Sprintf("/products/%d.json", productID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product payload missing")
	}

	c.log(ctx, "response", "fetch_product", map[string]any{"handle": payload.Product.Handle})
	return payload.Product, nil
}

// FetchOrders returns orders by id, any fulfillment status.
func (c *Client) FetchOrders(ctx context.Context, ids []int64) ([]Order, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	query := url.Values{"status": {"any"}}
	if len(parts) > 0 {
		query.Set("ids", strings.Join(parts, ","))
	}
	c.log(ctx, "request", "fetch_orders", map[string]any{"ids": len(parts)})

	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders.json", query, nil, &payload); err != nil {
		return nil, err
	}

	c.log(ctx, "response", "fetch_orders", map[string]any{"count": len(payload.Orders)})
	return payload.Orders, nil
}

// UpdateOrderTags replaces the tag string on a platform order.
func (c *Client) UpdateOrderTags(ctx context.Context, orderID int64, tags string) error {
	body := map[string]any{
		"order": map[string]any{
			"id":   orderID,
			"tags": tags,
		},
	}
	c.log(ctx, "request", "update_order_tags", map[string]any{"order_id": orderID, "tags": tags})

	path := fmt.Sprintf("/orders/%d.json", orderID)
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return err
	}

	c.log(ctx, "response", "update_order_tags", map[string]any{"order_id": orderID})
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "platform unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("platform returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": string(snippet)})
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode platform response")
	}
	return nil
}

func (c *Client) log(ctx context.Context, stage, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{"stage": stage, "operation": operation}
	for k, v := range fields {
		merged[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, merged), "shopify."+operation)
}
