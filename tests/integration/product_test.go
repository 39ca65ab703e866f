//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if len(list.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(list.Products))
	}

	for _, p := range list.Products {
		if p.Slug == "" {
			t.Errorf("product %s has empty slug", p.ID)
		}
		if p.BasePrice <= 0 {
			t.Errorf("product %s has non-positive price %v", p.Slug, p.BasePrice)
		}
	}
}

func TestListProducts_SearchFilter(t *testing.T) {
	resp := doGet(t, "/api/products?search=kurta")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if len(list.Products) != 1 {
		t.Fatalf("expected 1 product matching kurta, got %d", len(list.Products))
	}
	if list.Products[0].Slug != "indigo-block-print-kurta" {
		t.Errorf("unexpected match: %s", list.Products[0].Slug)
	}
}

func TestGetProductBySlug(t *testing.T) {
	resp := doGet(t, "/api/products/indigo-block-print-kurta")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.Name != "Indigo Block Print Kurta" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.BasePrice != 1499 {
		t.Errorf("base price: got %v, want 1499", p.BasePrice)
	}
	if len(p.Variants) != 4 {
		t.Errorf("variants: got %d, want 4", len(p.Variants))
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Error != "not_found" {
		t.Errorf("error code: got %q", body.Error)
	}
}

func TestCreateProduct_CustomerForbidden(t *testing.T) {
	token := registerAndLogin(t, "forbidden-test@example.com")

	resp := doPostWithToken(t, "/api/products", map[string]any{
		"name":       "Sneaky Product",
		"slug":       "sneaky-product",
		"base_price": 1,
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_Admin(t *testing.T) {
	token := adminToken(t)

	resp := doPostWithToken(t, "/api/products", map[string]any{
		"name":       "Ajrakh Stole",
		"slug":       "ajrakh-stole",
		"base_price": 899,
		"variants": []map[string]any{
			{"sku": "STO-AJR-FS-BLK", "size": "Free Size", "color": "Black", "stock_quantity": 20},
		},
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if !uuidPattern.MatchString(p.ID) {
		t.Errorf("product id is not a UUID: %s", p.ID)
	}
}
