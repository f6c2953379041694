package queryir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainPlan is the hash domain for plan fingerprints. The version suffix
// allows the encoding to change without colliding with old fingerprints.
const DomainPlan = "hql/plan/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalJSON encodes plan without HTML escaping and with every string
// NFC normalized, so canonically equivalent text encodes identically.
func CanonicalJSON(plan *QueryPlan) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plan); err != nil {
		return nil, fmt.Errorf("queryir: encode plan: %w", err)
	}
	return norm.NFC.Bytes(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Fingerprint returns a stable hex identifier for plan.
func Fingerprint(plan *QueryPlan) (string, error) {
	data, err := CanonicalJSON(plan)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: %w", err)
	}
	return hashWithDomain(DomainPlan, data), nil
}
