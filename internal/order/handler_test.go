package order

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/megano-shop/backend/internal/apperr"
)

func makeAppWithOrderHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestOrderRoutes_CreateConfirmFlow(t *testing.T) {
	svc, _, _ := newOrderService(nil)
	app := makeAppWithOrderHandler(NewHandler(svc))

	// unauthenticated
	req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(`[{"id":1,"count":1}]`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// create from posted positions
	req2 := httptest.NewRequest("POST", "/api/v1/orders",
		strings.NewReader(`[{"id":1,"count":2},{"id":2,"count":1}]`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "7")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for create, got %d", res2.StatusCode)
	}
	var created struct {
		OrderID int `json:"orderId"`
	}
	b2, _ := io.ReadAll(res2.Body)
	if err := json.Unmarshal(b2, &created); err != nil || created.OrderID == 0 {
		t.Fatalf("expected orderId in response, got %s", string(b2))
	}

	// detail shows pending status and frozen lines
	req3 := httptest.NewRequest("GET", "/api/v1/order/"+strconv.Itoa(created.OrderID), nil)
	req3.Header.Set("X-User-ID", "7")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for detail, got %d", res3.StatusCode)
	}
	b3, _ := io.ReadAll(res3.Body)
	if !strings.Contains(string(b3), `"status":"pending"`) {
		t.Fatalf("expected pending order, got %s", string(b3))
	}
	if !strings.Contains(string(b3), `"title":"Gaming Monitor"`) {
		t.Fatalf("expected frozen title in lines, got %s", string(b3))
	}

	// confirm with checkout fields
	req4 := httptest.NewRequest("POST", "/api/v1/order/"+strconv.Itoa(created.OrderID),
		strings.NewReader(`{"fullName":"Ann Lee","city":"Riga","deliveryType":"express"}`))
	req4.Header.Set("Content-Type", "application/json")
	req4.Header.Set("X-User-ID", "7")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for confirm, got %d", res4.StatusCode)
	}

	// second confirm conflicts
	req5 := httptest.NewRequest("POST", "/api/v1/order/"+strconv.Itoa(created.OrderID),
		strings.NewReader(`{}`))
	req5.Header.Set("Content-Type", "application/json")
	req5.Header.Set("X-User-ID", "7")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for repeat confirm, got %d", res5.StatusCode)
	}

	// history shows the accepted order
	req6 := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req6.Header.Set("X-User-ID", "7")
	res6, _ := app.Test(req6)
	if res6.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for history, got %d", res6.StatusCode)
	}
	b6, _ := io.ReadAll(res6.Body)
	if !strings.Contains(string(b6), `"status":"accepted"`) {
		t.Fatalf("expected accepted order in history, got %s", string(b6))
	}

	// other users see nothing
	req7 := httptest.NewRequest("GET", "/api/v1/order/"+strconv.Itoa(created.OrderID), nil)
	req7.Header.Set("X-User-ID", "8")
	res7, _ := app.Test(req7)
	if res7.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for foreign order, got %d", res7.StatusCode)
	}
}

func TestOrderRoutes_CreateErrors(t *testing.T) {
	svc, _, _ := newOrderService(nil)
	app := makeAppWithOrderHandler(NewHandler(svc))

	cases := []struct {
		name string
		body string
	}{
		{"empty order", `[]`},
		{"zero count", `[{"id":1,"count":0}]`},
		{"unknown product", `[{"id":99,"count":1}]`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/v1/orders", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "7")
		res, _ := app.Test(req)
		if res.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, res.StatusCode)
		}
	}
}

// conflictRepo reports a store write conflict from every confirm.
type conflictRepo struct {
	Repository
}

func (conflictRepo) Confirm(userID, orderID int, req ConfirmRequest) error {
	return fmt.Errorf("commit confirm: %w", apperr.ErrStockConflict)
}

func TestOrderRoutes_ConfirmStockConflictAnswers409(t *testing.T) {
	svc := NewService(conflictRepo{}, nil)
	app := makeAppWithOrderHandler(NewHandler(svc))

	req := httptest.NewRequest("POST", "/api/v1/order/11", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for a stock write conflict, got %d", res.StatusCode)
	}
}

func TestOrderRoutes_ConfirmShortStock(t *testing.T) {
	svc, _, _ := newOrderService(nil)
	app := makeAppWithOrderHandler(NewHandler(svc))

	// product 2 holds a single unit
	orderID, err := svc.Create(7, []LineInput{{ID: 2, Count: 5}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/order/"+strconv.Itoa(orderID),
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for short stock, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Office keyboard") {
		t.Fatalf("expected the failing product to be named, got %s", string(b))
	}
}
