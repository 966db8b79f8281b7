package entity

import (
	"fmt"
	"sort"
)

type ActionKind string

const (
	ActionCreateVM      ActionKind = "create_vm"
	ActionCreateStorage ActionKind = "create_storage"
)

// SupportedActions lists every action kind with a template.
var SupportedActions = []ActionKind{ActionCreateVM, ActionCreateStorage}

func (k ActionKind) Supported() bool {
	for _, s := range SupportedActions {
		if k == s {
			return true
		}
	}
	return false
}

// Wire keys of the action schema.
const (
	KeyAction             = "action"
	KeyRGName             = "rg_name"
	KeyLocation           = "location"
	KeyVMName             = "vm_name"
	KeyVMSize             = "vm_size"
	KeyStorageAccountName = "storage_account_name"
)

// Record is a JSON object strictly parsed from model output, before any
// semantic checks.
type Record map[string]any

// String returns the value stored under key rendered as a string.
// Missing and null values yield "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// ActionRequest is the normalized action record consumed by rendering.
type ActionRequest struct {
	Action             ActionKind `json:"action"`
	RGName             string     `json:"rg_name"`
	Location           string     `json:"location"`
	VMName             string     `json:"vm_name,omitempty"`
	VMSize             string     `json:"vm_size,omitempty"`
	StorageAccountName string     `json:"storage_account_name,omitempty"`

	// Extra holds keys the model emitted outside the schema.
	Extra map[string]string `json:"-"`
}

// Vars returns the template variable mapping for the request.
func (a ActionRequest) Vars() map[string]string {
	vars := make(map[string]string, len(a.Extra)+6)
	for k, v := range a.Extra {
		vars[k] = v
	}
	vars[KeyAction] = string(a.Action)
	vars[KeyRGName] = a.RGName
	vars[KeyLocation] = a.Location
	switch a.Action {
	case ActionCreateVM:
		vars[KeyVMName] = a.VMName
		vars[KeyVMSize] = a.VMSize
	case ActionCreateStorage:
		vars[KeyStorageAccountName] = a.StorageAccountName
	}
	return vars
}

// Record converts the request back into its wire form.
func (a ActionRequest) Record() Record {
	vars := a.Vars()
	rec := make(Record, len(vars))
	for k, v := range vars {
		rec[k] = v
	}
	return rec
}

// RequiredKeys returns the keys the action's template needs, sorted.
func RequiredKeys(kind ActionKind) []string {
	keys := []string{KeyAction, KeyRGName, KeyLocation}
	switch kind {
	case ActionCreateVM:
		keys = append(keys, KeyVMName, KeyVMSize)
	case ActionCreateStorage:
		keys = append(keys, KeyStorageAccountName)
	}
	sort.Strings(keys)
	return keys
}
