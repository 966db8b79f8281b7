package intent

import (
	"encoding/json"
	"strings"
	"time"

	"aiinfra/internal/domain/entity"
)

// Defaults are the values used for required fields the model left empty.
type Defaults struct {
	RGName        string
	Location      string
	VMName        string
	VMSize        string
	StoragePrefix string
}

func DefaultValues() Defaults {
	return Defaults{
		RGName:        "ai-rg",
		Location:      "Central India",
		VMName:        "ai-vm",
		VMSize:        "Standard_B1s",
		StoragePrefix: "aistorage",
	}
}

var schemaKeys = map[string]struct{}{
	entity.KeyAction:             {},
	entity.KeyRGName:             {},
	entity.KeyLocation:           {},
	entity.KeyVMName:             {},
	entity.KeyVMSize:             {},
	entity.KeyStorageAccountName: {},
}

type Normalizer struct {
	defaults Defaults
	now      func() time.Time
}

// NewNormalizer returns a normalizer using d. A nil clock means time.Now.
func NewNormalizer(d Defaults, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{defaults: d, now: now}
}

// Normalize confirms the action kind, fills defaults and sanitizes names.
// It performs no I/O.
func (n *Normalizer) Normalize(rec entity.Record) (entity.ActionRequest, error) {
	action := entity.ActionKind(strings.TrimSpace(rec.String(entity.KeyAction)))
	if !action.Supported() {
		return entity.ActionRequest{}, &entity.UnsupportedActionError{Action: action}
	}

	req := entity.ActionRequest{
		Action:   action,
		RGName:   valueOr(rec, entity.KeyRGName, n.defaults.RGName),
		Location: valueOr(rec, entity.KeyLocation, n.defaults.Location),
		Extra:    extraFields(rec),
	}

	switch action {
	case entity.ActionCreateVM:
		req.VMName = valueOr(rec, entity.KeyVMName, n.defaults.VMName)
		req.VMSize = valueOr(rec, entity.KeyVMSize, n.defaults.VMSize)
	case entity.ActionCreateStorage:
		now := n.now()
		name := valueOr(rec, entity.KeyStorageAccountName, n.defaults.StoragePrefix+TimeSuffix(now))
		req.StorageAccountName = SanitizeStorageName(name, now)
	}

	if err := CheckRequest(req); err != nil {
		return entity.ActionRequest{}, err
	}
	return req, nil
}

func valueOr(rec entity.Record, key, fallback string) string {
	v := rec.String(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// extraFields keeps scalar values outside the schema so templates can use
// them.
func extraFields(rec entity.Record) map[string]string {
	var extra map[string]string
	for k, v := range rec {
		if _, ok := schemaKeys[k]; ok {
			continue
		}
		switch v.(type) {
		case string, json.Number, float64, bool:
		default:
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = rec.String(k)
	}
	return extra
}
