package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRun separates run fingerprints from any other hash of the same bytes.
const DomainRun = "baseline/run/v1"

// HashWithDomain returns hex SHA-256 of domain, a 0x00 separator, and data.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies a run by its script source and arguments. Two runs
// of the same source with equal args share a fingerprint regardless of
// where the script file lives.
func Fingerprint(source []byte, args map[string]any) (string, error) {
	sum := sha256.Sum256(source)
	doc, err := MarshalCanonical(map[string]any{
		"source": hex.EncodeToString(sum[:]),
		"args":   args,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint args: %w", err)
	}
	return HashWithDomain(DomainRun, doc), nil
}
