package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrAssetNotFound),
		errors.Is(err, database.ErrCouponNotFound),
		errors.Is(err, database.ErrPaymentMethodNotFound),
		errors.Is(err, database.ErrSettingNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrAlreadyRefunded),
		errors.Is(err, database.ErrAssetAlreadyDelivered),
		errors.Is(err, database.ErrCouponExhausted),
		errors.Is(err, database.ErrOptimisticLockFailed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidStatus),
		errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, models.ErrEmptyPayload),
		errors.Is(err, models.ErrUnknownPayloadType):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
