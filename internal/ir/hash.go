package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainRow      = "motif/row/v1"
	DomainRelation = "motif/relation/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RowHash fingerprints one result row. Two rows have the same hash exactly
// when their values are pairwise Equal, so hashes can be used to compare
// result relations as multisets.
func RowHash(row []IRValue) (string, error) {
	canonical, err := MarshalCanonical(IRArray(row))
	if err != nil {
		return "", fmt.Errorf("RowHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRow, canonical), nil
}

// RelationHash fingerprints a column list together with an unordered
// multiset of row hashes. The caller sorts rowHashes first.
func RelationHash(columns []string, rowHashes []string) (string, error) {
	cols := make(IRArray, len(columns))
	for i, c := range columns {
		cols[i] = IRString(c)
	}
	rows := make(IRArray, len(rowHashes))
	for i, h := range rowHashes {
		rows[i] = IRString(h)
	}
	canonical, err := MarshalCanonical(IRObject{
		"columns": cols,
		"rows":    rows,
	})
	if err != nil {
		return "", fmt.Errorf("RelationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRelation, canonical), nil
}

// MustRowHash is like RowHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRowHash(row []IRValue) string {
	h, err := RowHash(row)
	if err != nil {
		panic(err)
	}
	return h
}
