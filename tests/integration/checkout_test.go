//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCheckout_EmptyCart(t *testing.T) {
	resp := checkout(t, user("u-empty"), "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)

	if msg := decodeJSON[errorResponse](t, resp).Error; msg != "Cart is empty" {
		t.Errorf("error: got %q", msg)
	}
}

func TestCheckout_ArchivesOrder(t *testing.T) {
	who := user("u-archive")
	addItem(t, who, "bottle", 2)

	resp := checkout(t, who, "")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	o := decodeJSON[orderResponse](t, resp).Order
	if o.TotalBeforeDiscount != 49.98 || o.TotalAfterDiscount != 49.98 || o.DiscountAmount != 0 {
		t.Errorf("totals: got %+v", o)
	}
	if o.AppliedDiscountCode != nil {
		t.Errorf("appliedDiscountCode: got %q", *o.AppliedDiscountCode)
	}

	got := queryPostgres(t, fmt.Sprintf(
		"SELECT user_id || ':' || total_after_discount FROM orders WHERE id = '%s'", o.ID))
	if got != "u-archive:49.98" {
		t.Errorf("archived order: got %q", got)
	}
}

func TestCheckout_UnknownCode(t *testing.T) {
	who := user("u-badcode")
	addItem(t, who, "cap", 1)

	resp := checkout(t, who, "DISCOUNT-NOPE")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)

	if msg := decodeJSON[errorResponse](t, resp).Error; msg != "Invalid or expired discount code" {
		t.Errorf("error: got %q", msg)
	}

	// The cart is left intact.
	resp = do(t, http.MethodGet, "/api/cart", who, nil)
	defer resp.Body.Close()
	if items := decodeJSON[cartResponse](t, resp).Cart.Items; len(items) != 1 {
		t.Errorf("expected cart to keep 1 line, got %d", len(items))
	}
}

func TestDiscountLifecycle(t *testing.T) {
	filler := user("u-filler")

	// Retire a code left active by another test so generation depends only
	// on the order count.
	if s := stats(t); s.ActiveDiscountCode != nil {
		resp := do(t, http.MethodPost, "/api/admin/discounts/"+*s.ActiveDiscountCode+"/expire", admin, nil)
		resp.Body.Close()
	}

	// Move to the next multiple of 3 orders.
	for {
		addItem(t, filler, "sticker", 1)
		resp := checkout(t, filler, "")
		resp.Body.Close()
		expectStatus(t, resp, http.StatusOK)
		if stats(t).TotalOrdersPlaced%3 == 0 {
			break
		}
	}
	before := stats(t)

	resp := do(t, http.MethodPost, "/api/admin/discounts/generate", user("u-filler"), nil)
	resp.Body.Close()
	expectStatus(t, resp, http.StatusForbidden)

	resp = do(t, http.MethodPost, "/api/admin/discounts/generate", admin, nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)
	code := decodeJSON[discountCodeResponse](t, resp).DiscountCode
	if code.Used || code.Expired || code.Rate != 0.1 {
		t.Fatalf("generated code: got %+v", code)
	}

	// One code per window.
	resp = do(t, http.MethodPost, "/api/admin/discounts/generate", admin, nil)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)
	if msg := decodeJSON[errorResponse](t, resp).Error; msg != "Not eligible to generate discount code right now" {
		t.Errorf("error: got %q", msg)
	}

	buyer := user("u-buyer")
	addItem(t, buyer, "hoodie", 3)
	resp = checkout(t, buyer, code.Code)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	o := decodeJSON[orderResponse](t, resp).Order
	if o.TotalBeforeDiscount != 300 || o.DiscountAmount != 30 || o.TotalAfterDiscount != 270 {
		t.Errorf("totals: got %+v", o)
	}
	if o.AppliedDiscountCode == nil || *o.AppliedDiscountCode != code.Code {
		t.Errorf("appliedDiscountCode: got %v", o.AppliedDiscountCode)
	}

	// A redeemed code cannot be reused.
	addItem(t, buyer, "hoodie", 1)
	resp = checkout(t, buyer, code.Code)
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)

	after := stats(t)
	if after.TotalOrdersPlaced != before.TotalOrdersPlaced+1 {
		t.Errorf("orders placed: got %d, want %d", after.TotalOrdersPlaced, before.TotalOrdersPlaced+1)
	}
	if diff := after.TotalDiscountAmount - before.TotalDiscountAmount; diff != 30 {
		t.Errorf("discount total grew by %v, want 30", diff)
	}
	if after.ActiveDiscountCode != nil {
		t.Errorf("activeDiscountCode: got %q", *after.ActiveDiscountCode)
	}

	got := queryPostgres(t, fmt.Sprintf("SELECT discount_code FROM orders WHERE id = '%s'", o.ID))
	if got != code.Code {
		t.Errorf("archived discount code: got %q", got)
	}
}
