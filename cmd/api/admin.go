package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avelar/digistore/internal/models"
	"github.com/avelar/digistore/internal/store"
)

func (a *api) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU          string          `json:"sku"`
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Image        string          `json:"image"`
		CategoryID   *int64          `json:"category_id"`
		Price        decimal.Decimal `json:"price"`
		DeliveryMode string          `json:"delivery_mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := store.CreateProduct(r.Context(), a.db, store.ProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		DeliveryMode: models.DeliveryMode(req.DeliveryMode),
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (a *api) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		SKU          string          `json:"sku"`
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Image        string          `json:"image"`
		CategoryID   *int64          `json:"category_id"`
		Price        decimal.Decimal `json:"price"`
		DeliveryMode string          `json:"delivery_mode"`
		Version      int             `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := store.UpdateProductOptimistic(r.Context(), a.db, id, store.ProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		CategoryID:   req.CategoryID,
		Price:        req.Price,
		DeliveryMode: models.DeliveryMode(req.DeliveryMode),
	}, req.Version)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (a *api) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := store.DeleteProduct(r.Context(), a.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		SortOrder int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := store.CreateCategory(r.Context(), a.db, req.Name, req.SortOrder)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (a *api) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := store.DeleteCategory(r.Context(), a.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		Instructions string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	method, err := store.CreatePaymentMethod(r.Context(), a.db, req.Name, req.Instructions)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, method)
}

func (a *api) handleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string          `json:"code"`
		DiscountType  string          `json:"discount_type"`
		DiscountValue decimal.Decimal `json:"discount_value"`
		OneTime       bool            `json:"one_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	coupon, err := store.CreateCoupon(r.Context(), a.db, req.Code,
		models.DiscountType(req.DiscountType), req.DiscountValue, req.OneTime)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, coupon)
}

func (a *api) handleListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := store.ListCoupons(r.Context(), a.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, coupons)
}

func (a *api) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64  `json:"product_id"`
		Type      string `json:"type"`
		Key       string `json:"key"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		ExtraInfo string `json:"extra_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	asset, err := store.AddAsset(r.Context(), a.db, store.AddAssetRequest{
		ProductID: req.ProductID,
		Type:      models.AssetType(req.Type),
		Key:       req.Key,
		Username:  req.Username,
		Password:  req.Password,
		ExtraInfo: req.ExtraInfo,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

func (a *api) handleListProductAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	assets, err := store.ListByProduct(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

func (a *api) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid asset ID")
		return
	}

	if err := store.DeleteAsset(r.Context(), a.db, id); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListOrders(r.Context(), a.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *api) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.engine.SetStatus(r.Context(), id, models.OrderStatus(req.Status)); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleRefundOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	if err := a.engine.Refund(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleDeliverManually(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var payload models.DeliveryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.engine.DeliverManually(r.Context(), id, payload); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleAutoDeliver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	result, err := a.engine.AttemptAutoDelivery(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *api) handleCreditWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := store.Credit(r.Context(), a.db, id, req.Amount); err != nil {
		respondStoreError(w, err)
		return
	}

	wallet, err := store.GetWallet(r.Context(), a.db, id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

func (a *api) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := a.settings.Get(r.Context(), key)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (a *api) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.settings.Put(r.Context(), key, req.Value); err != nil {
		respondStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
