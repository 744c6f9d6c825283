package cart

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithCartHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-Customer-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"customer_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestCartRoutes_Basic(t *testing.T) {
	service := newTestService()
	handler := NewHandler(service)
	app := makeAppWithCartHandler(handler)

	// unauthorized access should be blocked
	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// add a product
	req2 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productID":7,"quantity":2}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-Customer-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res2.StatusCode)
	}

	// add the same product again, should merge
	req3 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productID":7,"quantity":3}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-Customer-ID", "42")
	res3, _ := app.Test(req3)
	b3, _ := io.ReadAll(res3.Body)
	if !strings.Contains(string(b3), `"quantity":5`) {
		t.Fatalf("expected quantity 5 after second add, got %s", string(b3))
	}

	// non-positive quantity on add is rejected, not clamped
	req4 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productID":7,"quantity":0}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-Customer-ID", "42")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for zero-quantity add, got %d", res4.StatusCode)
	}

	// zero quantity through PUT removes the line
	req5 := httptest.NewRequest("PUT", "/api/v1/cart/7", strings.NewReader(`{"quantity":0}`))
	req5.Header.Set("Content-Type", "application/json")
	req5.Header.Set("X-Customer-ID", "42")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for zero-quantity set, got %d", res5.StatusCode)
	}

	req6 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req6.Header.Set("X-Customer-ID", "42")
	res6, _ := app.Test(req6)
	b6, _ := io.ReadAll(res6.Body)
	if strings.Contains(string(b6), `"productID":7`) {
		t.Fatalf("expected product 7 to be gone, got %s", string(b6))
	}

	// summary endpoint
	req7 := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"productID":1,"quantity":2}`))
	req7.Header.Set("Content-Type", "application/json")
	req7.Header.Set("X-Customer-ID", "42")
	app.Test(req7)

	req8 := httptest.NewRequest("GET", "/api/v1/cart/summary", nil)
	req8.Header.Set("X-Customer-ID", "42")
	res8, _ := app.Test(req8)
	b8, _ := io.ReadAll(res8.Body)
	if !strings.Contains(string(b8), `"totalPrice":300`) {
		t.Fatalf("unexpected summary body: %s", string(b8))
	}

	// clear the cart
	req9 := httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req9.Header.Set("X-Customer-ID", "42")
	res9, _ := app.Test(req9)
	if res9.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204 for clear cart, got %d", res9.StatusCode)
	}
}
