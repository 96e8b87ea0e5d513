package models

import (
	"errors"
	"testing"
)

func TestPayloadValidate(t *testing.T) {
	p := DeliveryPayload{Type: AssetTypeKey, Data: "ABC-123"}
	if err := p.Validate(); err != nil {
		t.Errorf("Valid key payload rejected: %v", err)
	}

	p = DeliveryPayload{Type: AssetTypeKey}
	if err := p.Validate(); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Expected empty payload error, got: %v", err)
	}

	p = DeliveryPayload{Type: "voucher", Data: "X"}
	if err := p.Validate(); !errors.Is(err, ErrUnknownPayloadType) {
		t.Errorf("Expected unknown type error, got: %v", err)
	}
}

func TestPayloadForDeliveryKey(t *testing.T) {
	asset := DigitalAsset{Type: AssetTypeKey, Key: "ABC-123", ExtraInfo: "EU only"}

	payload, err := asset.PayloadForDelivery()
	if err != nil {
		t.Fatalf("PayloadForDelivery: %v", err)
	}
	if payload.Type != AssetTypeKey || payload.Data != "ABC-123" || payload.ExtraInfo != "EU only" {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestPayloadForDeliveryAccount(t *testing.T) {
	asset := DigitalAsset{Type: AssetTypeAccount, Username: "alice", Password: "secret"}

	payload, err := asset.PayloadForDelivery()
	if err != nil {
		t.Fatalf("PayloadForDelivery: %v", err)
	}
	if payload.Data != "alice:secret" {
		t.Errorf("Expected alice:secret, got %q", payload.Data)
	}

	asset.Password = ""
	if _, err := asset.PayloadForDelivery(); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Expected empty payload error, got: %v", err)
	}
}

func TestPayloadForDeliveryUnknownType(t *testing.T) {
	asset := DigitalAsset{Type: "voucher", Key: "X"}
	if _, err := asset.PayloadForDelivery(); !errors.Is(err, ErrUnknownPayloadType) {
		t.Errorf("Expected unknown type error, got: %v", err)
	}
}

func TestValidateStock(t *testing.T) {
	tests := []struct {
		name    string
		asset   DigitalAsset
		wantErr bool
	}{
		{"key ok", DigitalAsset{Type: AssetTypeKey, Key: "K"}, false},
		{"key missing", DigitalAsset{Type: AssetTypeKey}, true},
		{"account ok", DigitalAsset{Type: AssetTypeAccount, Username: "u", Password: "p"}, false},
		{"account no password", DigitalAsset{Type: AssetTypeAccount, Username: "u"}, true},
		{"account no username", DigitalAsset{Type: AssetTypeAccount, Password: "p"}, true},
		{"unknown type", DigitalAsset{Type: "voucher"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.ValidateStock()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStock() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
