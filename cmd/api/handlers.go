package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/fulfillment"
	"github.com/avelar/digistore/internal/settings"
	"github.com/avelar/digistore/internal/store"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func (a *api) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListProducts(r.Context(), a.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *api) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := store.GetProduct(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (a *api) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), a.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

func (a *api) handleListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	products, err := store.ListProductsByCategory(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (a *api) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := store.ListPaymentMethods(r.Context(), a.db, true)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, methods)
}

func (a *api) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int64  `json:"user_id"`
		UserEmail     string `json:"user_email"`
		PaymentMethod string `json:"payment_method"`
		CouponCode    string `json:"coupon_code"`
		Items         []struct {
			ProductID int64 `json:"product_id"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
		WalletDeduction decimal.Decimal `json:"wallet_deduction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()

	var instructions string
	if req.PaymentMethod != "" {
		if method, err := store.GetPaymentMethodByName(ctx, a.db, req.PaymentMethod); err == nil {
			instructions = method.Instructions
		}
	}

	items := make([]fulfillment.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, fulfillment.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := a.engine.PlaceOrder(ctx, fulfillment.PlaceOrderRequest{
		UserID:              req.UserID,
		UserEmail:           req.UserEmail,
		Items:               items,
		Currency:            a.settings.GetDefault(ctx, settings.KeyCurrency, "USD"),
		PaymentMethod:       req.PaymentMethod,
		PaymentInstructions: instructions,
		CouponCode:          req.CouponCode,
		TaxRate:             a.settings.TaxRate(ctx),
		WalletDeduction:     req.WalletDeduction,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (a *api) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := store.GetOrder(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (a *api) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := store.ListOrdersCursor(r.Context(), a.db, id, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *api) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	wallet, err := store.GetWallet(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}
