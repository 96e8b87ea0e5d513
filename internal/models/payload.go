package models

import (
	"errors"
	"fmt"
)

type AssetType string

const (
	AssetTypeKey     AssetType = "key"
	AssetTypeAccount AssetType = "account"
)

func ValidAssetType(t AssetType) bool {
	return t == AssetTypeKey || t == AssetTypeAccount
}

// DeliveryPayload is what an order carries once fulfilled: either a
// license key or an account credential pair, plus free-form extra info.
type DeliveryPayload struct {
	Type      AssetType `json:"type"`
	Data      string    `json:"data"`
	ExtraInfo string    `json:"extra_info,omitempty"`
}

var (
	ErrEmptyPayload       = errors.New("delivery payload data is empty")
	ErrUnknownPayloadType = errors.New("unknown delivery payload type")
)

func (p *DeliveryPayload) Validate() error {
	switch p.Type {
	case AssetTypeKey, AssetTypeAccount:
		if p.Data == "" {
			return ErrEmptyPayload
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPayloadType, p.Type)
	}
}

// PayloadForDelivery renders an asset into the payload attached to the
// completed order. The switch is exhaustive over AssetType.
func (a *DigitalAsset) PayloadForDelivery() (DeliveryPayload, error) {
	switch a.Type {
	case AssetTypeKey:
		if a.Key == "" {
			return DeliveryPayload{}, ErrEmptyPayload
		}
		return DeliveryPayload{Type: AssetTypeKey, Data: a.Key, ExtraInfo: a.ExtraInfo}, nil
	case AssetTypeAccount:
		if a.Username == "" || a.Password == "" {
			return DeliveryPayload{}, ErrEmptyPayload
		}
		return DeliveryPayload{
			Type:      AssetTypeAccount,
			Data:      a.Username + ":" + a.Password,
			ExtraInfo: a.ExtraInfo,
		}, nil
	default:
		return DeliveryPayload{}, fmt.Errorf("%w: %q", ErrUnknownPayloadType, a.Type)
	}
}

// ValidateStock checks the variant shape at admin stock entry.
func (a *DigitalAsset) ValidateStock() error {
	switch a.Type {
	case AssetTypeKey:
		if a.Key == "" {
			return errors.New("key asset requires a key")
		}
	case AssetTypeAccount:
		if a.Username == "" || a.Password == "" {
			return errors.New("account asset requires username and password")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPayloadType, a.Type)
	}
	return nil
}
