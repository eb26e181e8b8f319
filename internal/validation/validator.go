package validation

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressValidator checks VeChain (Ethereum-format) address syntax.
type AddressValidator struct {
	// StrictChecksum rejects mixed-case addresses whose EIP-55 checksum is wrong.
	// All-lower and all-upper hex are always accepted.
	StrictChecksum bool
}

func NewAddressValidator(strict bool) *AddressValidator {
	return &AddressValidator{StrictChecksum: strict}
}

// IsValidAddress reports whether address is syntactically acceptable.
func (v *AddressValidator) IsValidAddress(address string) bool {
	return v.ValidateAddress(address).IsValid
}

// ValidateAddress returns the full result, including checksum suggestions.
func (v *AddressValidator) ValidateAddress(address string) ValidationResult {
	result := ValidationResult{IsValid: true}

	if strings.TrimSpace(address) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "address",
			Code:     ErrorAddressRequired,
			Message:  "Address is required",
			Severity: ValidationSeverityError,
		})
		result.IsValid = false
		return result
	}

	// common.IsHexAddress also accepts a missing 0x prefix; VeChain addresses always carry it.
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "address",
			Code:     ErrorInvalidAddress,
			Message:  "Invalid VeChain address format",
			Severity: ValidationSeverityError,
		})
		result.IsValid = false
		return result
	}

	checksumAddr := common.HexToAddress(address).Hex()
	if checksumAddr != address && hasMixedCase(address[2:]) {
		issue := ValidationError{
			Field:    "address",
			Code:     ErrorChecksumMismatch,
			Message:  fmt.Sprintf("Address checksum mismatch. Suggested: %s", checksumAddr),
			Severity: ValidationSeverityWarning,
		}
		if v.StrictChecksum {
			issue.Severity = ValidationSeverityError
			result.Errors = append(result.Errors, issue)
			result.IsValid = false
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("Use checksum address: %s", checksumAddr))
	}

	return result
}

// Normalize returns the EIP-55 checksummed form of a valid address, or the input unchanged.
func Normalize(address string) string {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

func hasMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
