package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// DomainEvent prefixes every event hash. The version suffix leaves room for
// a future algorithm change.
const DomainEvent = "recreg/event/v1"

// hashWithDomain computes SHA256(domain 0x00 prev 0x00 data).
// The null separators prevent boundary ambiguity between the parts.
func hashWithDomain(domain, prev string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write([]byte(prev))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalFields lists the hashed fields of an event. PrevHash is chained
// separately and Hash is the output, so neither appears here.
func canonicalFields(e Event) map[string]any {
	obj := map[string]any{
		"seq":       e.Seq,
		"id":        e.ID,
		"kind":      e.Kind,
		"record_id": e.RecordID,
		"at":        e.At.UnixNano(),
	}
	putBytes(obj, "data", e.Data)
	if e.Kind == KindCreated {
		putBytes(obj, "owner", string(e.Owner))
	}
	return obj
}

// putBytes stores an arbitrary byte string under key, or its hex form under
// key+"_hex" when it is not valid UTF-8. The key records which form was
// used, so no text value collides with a hex-encoded one.
func putBytes(obj map[string]any, key, s string) {
	if utf8.ValidString(s) {
		obj[key] = s
		return
	}
	obj[key+"_hex"] = hex.EncodeToString([]byte(s))
}

// EventHash computes the chained hash of e given its predecessor's hash.
// The first event in a feed chains from the empty string.
func EventHash(prevHash string, e Event) (string, error) {
	canonical, err := MarshalCanonical(canonicalFields(e))
	if err != nil {
		return "", fmt.Errorf("EventHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, prevHash, canonical), nil
}

// Seal stamps e with its position and chain hashes.
func Seal(e Event, seq int64, prevHash string) (Event, error) {
	e.Seq = seq
	e.PrevHash = prevHash
	hash, err := EventHash(prevHash, e)
	if err != nil {
		return Event{}, err
	}
	e.Hash = hash
	return e, nil
}

// VerifyLink reports whether e correctly follows an event with hash prevHash.
func VerifyLink(prevHash string, e Event) error {
	if e.PrevHash != prevHash {
		return fmt.Errorf("event %d: prev_hash %q does not match predecessor %q", e.Seq, e.PrevHash, prevHash)
	}
	want, err := EventHash(prevHash, e)
	if err != nil {
		return err
	}
	if e.Hash != want {
		return fmt.Errorf("event %d: hash mismatch", e.Seq)
	}
	return nil
}
