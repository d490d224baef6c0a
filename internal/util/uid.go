// Package util provides helpers shared by the DICOM exporter and the CLI.
package util

import (
	"crypto/sha256"
	"math/big"
)

// UIDRoot is the organisation root prepended to every generated UID.
const UIDRoot = "1.2.826.0.1.3680043.8.498."

// GenerateDeterministicUID derives a DICOM UID from seed. The same seed always
// yields the same UID; the result is at most 64 characters, digits and dots
// only, with no leading zero in the generated component.
func GenerateDeterministicUID(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	// 12 bytes keep the suffix within 29 digits
	n := new(big.Int).SetBytes(sum[:12])
	if n.Sign() == 0 {
		n.SetInt64(1)
	}
	return UIDRoot + n.String()
}
