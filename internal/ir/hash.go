package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainLog is the domain prefix for event log digests.
// The version suffix allows the line format to change later.
const DomainLog = "philosophers/log/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LogDigest hashes the printed form of events, one line each, in the order
// given. Two runs with identical output have identical digests.
func LogDigest(events []Event) string {
	var data []byte
	for _, ev := range events {
		data = append(data, ev.Line()...)
		data = append(data, '\n')
	}
	return hashWithDomain(DomainLog, data)
}
