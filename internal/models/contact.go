package models

import (
	"strings"
)

// AddressType tells whether an entry is a payee (Send) or one of the wallet's own
// receiving addresses (Receive).
type AddressType string

const (
	AddressSend    AddressType = "send"
	AddressReceive AddressType = "receive"
)

func (t AddressType) String() string {
	switch t {
	case AddressReceive:
		return "Receive"
	default:
		return "Send"
	}
}

// ParseAddressType maps stored strings back to an AddressType. Unknown values are Send.
func ParseAddressType(s string) AddressType {
	if strings.EqualFold(strings.TrimSpace(s), string(AddressReceive)) {
		return AddressReceive
	}
	return AddressSend
}

// ChangeStatus is the kind of change a backend notification reports for an address.
type ChangeStatus int

const (
	StatusNew ChangeStatus = iota
	StatusUpdated
	StatusDeleted
)

func (s ChangeStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

type ContactEntry struct {
	Label   string      `json:"label"`
	Address string      `json:"address"`
	Email   string      `json:"email,omitempty"`
	URL     string      `json:"url,omitempty"`
	Type    AddressType `json:"type"`
}

func NewContactEntry(label, address, email, url string, typ AddressType) ContactEntry {
	return ContactEntry{
		Label:   strings.TrimSpace(label),
		Address: strings.TrimSpace(address),
		Email:   strings.TrimSpace(email),
		URL:     strings.TrimSpace(url),
		Type:    typ,
	}
}

func (c ContactEntry) IsReceive() bool {
	return c.Type == AddressReceive
}
