package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogDigest_Stable(t *testing.T) {
	events := []Event{
		{Seq: 1, ElapsedMs: 0, Actor: 1, Kind: KindTookFork},
		{Seq: 2, ElapsedMs: 200, Actor: 1, Kind: KindDied},
	}

	d1 := LogDigest(events)
	d2 := LogDigest(events)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64, "hex sha256")
}

func TestLogDigest_IgnoresSeq(t *testing.T) {
	a := []Event{{Seq: 1, ElapsedMs: 5, Actor: 2, Kind: KindEating}}
	b := []Event{{Seq: 9, ElapsedMs: 5, Actor: 2, Kind: KindEating}}
	assert.Equal(t, LogDigest(a), LogDigest(b), "digest covers printed lines only")
}

func TestLogDigest_OrderMatters(t *testing.T) {
	x := Event{ElapsedMs: 1, Actor: 1, Kind: KindSleeping}
	y := Event{ElapsedMs: 1, Actor: 2, Kind: KindSleeping}
	assert.NotEqual(t, LogDigest([]Event{x, y}), LogDigest([]Event{y, x}))
}

func TestLogDigest_DomainSeparated(t *testing.T) {
	assert.NotEqual(t, hashWithDomain(DomainLog, nil), hashWithDomain("other", nil))
}
