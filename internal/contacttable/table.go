package contacttable

import "rhystmorgan/veContacts/internal/models"

// Column indices of the contact table.
const (
	ColumnLabel = iota
	ColumnAddress
	ColumnEmail
	ColumnURL

	columnCount
)

var columnHeaders = [columnCount]string{
	ColumnLabel:   "Label",
	ColumnAddress: "Address",
	ColumnEmail:   "Email",
	ColumnURL:     "URL",
}

// ItemFlags describe what a display layer may do with a cell.
type ItemFlags uint8

const (
	FlagSelectable ItemFlags = 1 << iota
	FlagEditable
	FlagEnabled

	FlagNone ItemFlags = 0
)

func (f ItemFlags) Has(flag ItemFlags) bool {
	return f&flag == flag
}

// TableModel is the row/column contract a display layer programs against.
type TableModel interface {
	RowCount() int
	ColumnCount() int
	// Data returns the display value of a cell; ok is false for an invalid index.
	Data(row, column int) (value string, ok bool)
	// Type is the typed role distinguishing Send from Receive entries.
	Type(row int) (models.AddressType, bool)
	SetData(row, column int, value string) bool
	HeaderData(column int) string
	Flags(row, column int) ItemFlags
}

// EditStatus is the outcome of the most recent AddRow call.
type EditStatus int

const (
	StatusOK EditStatus = iota
	StatusInvalidAddress
	StatusDuplicateAddress
	StatusWalletUnlockFailure
	StatusKeyGenerationFailure
	StatusStoreFailure
)

func (s EditStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidAddress:
		return "INVALID_ADDRESS"
	case StatusDuplicateAddress:
		return "DUPLICATE_ADDRESS"
	case StatusWalletUnlockFailure:
		return "WALLET_UNLOCK_FAILURE"
	case StatusKeyGenerationFailure:
		return "KEY_GENERATION_FAILURE"
	case StatusStoreFailure:
		return "STORE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Message is a short user-facing description of the status.
func (s EditStatus) Message() string {
	switch s {
	case StatusOK:
		return "Contact saved."
	case StatusInvalidAddress:
		return "The entered address is not a valid VeChain address."
	case StatusDuplicateAddress:
		return "The entered address is already in the address book."
	case StatusWalletUnlockFailure:
		return "Could not unlock wallet."
	case StatusKeyGenerationFailure:
		return "New key generation failed."
	case StatusStoreFailure:
		return "Could not save the address book."
	default:
		return "An unexpected error occurred."
	}
}
