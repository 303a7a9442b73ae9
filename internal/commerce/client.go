// Package commerce is the outbound client for the retailer's commerce
// REST API. Only the cart surface is consumed here; the API itself is
// owned elsewhere.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hobbyvault/storefront/internal/cart"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Wire shapes of the cart API. Every endpoint answers with the full
// cart.
type cartItemDTO struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"productId"`
	VariantID uint    `json:"variantId,omitempty"`
	Price     float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
}

type cartResponse struct {
	Items  []cartItemDTO `json:"items"`
	Total  float64       `json:"total"`
	CartID uint          `json:"cartId"`
}

type addRequest struct {
	ProductID uint `json:"productId"`
	VariantID uint `json:"variantId,omitempty"`
	Quantity  uint `json:"quantity"`
}

type updateRequest struct {
	Quantity uint `json:"quantity"`
}

func (c *Client) FetchCart(ctx context.Context, credential string) (cart.State, error) {
	return c.do(ctx, credential, http.MethodGet, "cart", nil)
}

func (c *Client) AddItem(ctx context.Context, credential string, productID, variantID, quantity uint) (cart.State, error) {
	return c.do(ctx, credential, http.MethodPost, "cart/add", addRequest{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
}

func (c *Client) RemoveItem(ctx context.Context, credential, itemID string) (cart.State, error) {
	return c.do(ctx, credential, http.MethodDelete, "cart/item/"+itemID, nil)
}

func (c *Client) UpdateItem(ctx context.Context, credential, itemID string, quantity uint) (cart.State, error) {
	return c.do(ctx, credential, http.MethodPatch, "cart/item/"+itemID, updateRequest{Quantity: quantity})
}

func (c *Client) do(ctx context.Context, credential, method, path string, body any) (cart.State, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return cart.State{}, fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return cart.State{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cart.State{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cart.State{}, fmt.Errorf("%s %s failed with status: %d", method, path, resp.StatusCode)
	}

	var result cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return cart.State{}, fmt.Errorf("decode response: %w", err)
	}

	return toState(result), nil
}

func toState(r cartResponse) cart.State {
	items := make([]cart.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = cart.Item{
			ID:        strconv.FormatUint(uint64(it.ID), 10),
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Name:      it.Name,
			Image:     it.Image,
		}
	}
	return cart.State{
		Items:  items,
		Total:  r.Total,
		CartID: r.CartID,
	}
}
