package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProfile  = "dronectl/profile/v1"
	DomainSnapshot = "dronectl/snapshot/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProfileHash computes the fingerprint of a profile. Two profiles with the
// same groups, relations and readiness rules hash identically regardless of
// where they were loaded from.
func ProfileHash(p *Profile) (string, error) {
	canonical, err := MarshalCanonical(p.ToIR())
	if err != nil {
		return "", fmt.Errorf("ProfileHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProfile, canonical), nil
}

// SnapshotHash computes the fingerprint of an engine snapshot object.
func SnapshotHash(snapshot IRObject) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustProfileHash is like ProfileHash but panics on error.
// Use only in tests or when the profile is known to be valid.
func MustProfileHash(p *Profile) string {
	h, err := ProfileHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
