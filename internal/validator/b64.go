package validator

import (
	"encoding/base64"
)

// ensure the data length is less than the maximum base64 length for a given length without decoding the base64
func validateBase64Len(dataLen int, length int) bool {
	return dataLen <= base64.StdEncoding.EncodedLen(length)
}

// ensures an encoded evidence file is less than the maximum length for the allowable max file size (8mb)
func ValidateEvidenceSize(dataLen int) bool {
	return validateBase64Len(dataLen, 1<<23)
}
