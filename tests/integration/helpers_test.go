package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

const shopPort = 8080

// baseURL returns the base URL for the shop running on the given port.
func baseURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// skipIfNotRunning performs a quick health check against the shop.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T, port int) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL(port) + "/health/live")
	if err != nil {
		t.Skipf("shop on port %d not reachable (Docker not running?): %v", port, err)
	}
	resp.Body.Close()
}

// httpGet performs an HTTP GET request and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPost performs an HTTP POST request with a JSON body.
func httpPost(t *testing.T, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body for %s: %v", url, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("creating POST request for %s failed: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) == 0 {
		return nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
	return data
}

// requireStatus fails the test if the status code does not match.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField returns a nested field from a decoded JSON body, or nil.
func extractField(data map[string]interface{}, field string) interface{} {
	if data == nil {
		return nil
	}
	return data[field]
}

// createProduct adds a catalog item and returns its id.
func createProduct(t *testing.T, title string, price int64) int64 {
	t.Helper()

	status, data := httpPost(t, baseURL(shopPort)+"/api/v1/items", map[string]interface{}{
		"title":       title,
		"description": "integration test product",
		"price":       price,
	})
	requireStatus(t, status, 201)

	product, ok := extractField(data, "data").(map[string]interface{})
	if !ok {
		t.Fatalf("expected product in create response, got %v", data)
	}
	id, ok := product["id"].(float64)
	if !ok {
		t.Fatalf("expected numeric product id, got %v", product["id"])
	}
	return int64(id)
}

// uniqueTitle generates a unique product title to avoid test collisions.
func uniqueTitle(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
