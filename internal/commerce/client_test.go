package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCartBody = `{
	"items": [
		{"id": 41, "productId": 5, "variantId": 2, "price": 10.5, "quantity": 3, "name": "booster box", "image": "box.png"},
		{"id": 42, "productId": 9, "price": 4, "quantity": 1, "name": "dice"}
	],
	"total": 35.5,
	"cartId": 77
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestFetchCart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/cart", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(testCartBody))
	})

	state, err := c.FetchCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, uint(77), state.CartID)
	require.InDelta(t, 35.5, state.Total, 0.001)
	require.Len(t, state.Items, 2)
	require.Equal(t, "41", state.Items[0].ID)
	require.Equal(t, uint(2), state.Items[0].VariantID)
	require.Equal(t, "42", state.Items[1].ID)
	require.Zero(t, state.Items[1].VariantID)
}

func TestAddItemSendsWireShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/add", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.EqualValues(t, 5, body["productId"])
		require.EqualValues(t, 2, body["variantId"])
		require.EqualValues(t, 3, body["quantity"])

		_, _ = w.Write([]byte(testCartBody))
	})

	_, err := c.AddItem(context.Background(), "tok", 5, 2, 3)
	require.NoError(t, err)
}

func TestAddItemOmitsAbsentVariant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotContains(t, body, "variantId")
		_, _ = w.Write([]byte(testCartBody))
	})

	_, err := c.AddItem(context.Background(), "tok", 5, 0, 1)
	require.NoError(t, err)
}

func TestRemoveItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/cart/item/41", r.URL.Path)
		_, _ = w.Write([]byte(testCartBody))
	})

	_, err := c.RemoveItem(context.Background(), "tok", "41")
	require.NoError(t, err)
}

func TestUpdateItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/cart/item/41", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.EqualValues(t, 4, body["quantity"])

		_, _ = w.Write([]byte(testCartBody))
	})

	_, err := c.UpdateItem(context.Background(), "tok", "41", 4)
	require.NoError(t, err)
}

func TestNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.FetchCart(context.Background(), "tok")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
