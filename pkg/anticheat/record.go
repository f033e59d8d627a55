package anticheat

import (
	"encoding/json"
	"time"
)

// recordVersion tags the persisted schema. Anything unversioned or
// unparseable is the single "legacy" case: interpreted as one suspicious
// event having already occurred, since a corrupt-but-present record is
// evidence something was previously written.
const recordVersion = 1

type record struct {
	Version               int    `json:"version"`
	Timestamp             string `json:"timestamp"`
	VisibilityChangeTimes int    `json:"visibility_change_times"`
	CaughtCheating        bool   `json:"caught_cheating"`
	Reason                string `json:"reason"`
}

func encodeRecord(count int, caught bool, reason string) string {
	raw, _ := json.Marshal(record{
		Version:               recordVersion,
		Timestamp:             time.Now().UTC().Format(time.RFC3339),
		VisibilityChangeTimes: count,
		CaughtCheating:        caught,
		Reason:                reason,
	})
	return string(raw)
}

// decodeRecord parses a persisted record. ok is false for the legacy case.
func decodeRecord(raw string) (record, bool) {
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, false
	}
	if rec.Version != recordVersion {
		return record{}, false
	}
	if rec.VisibilityChangeTimes < 0 {
		rec.VisibilityChangeTimes = 0
	}
	return rec, true
}
