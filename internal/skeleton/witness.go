package skeleton

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// HexBytes is a byte payload that serializes as 0x-prefixed hex, matching the
// chain's JSON conventions.
type HexBytes []byte

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(b))
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return errors.Wrap(err, "decoding hex bytes")
	}
	*b = raw
	return nil
}

// WitnessArgs is the structured witness a lock or type script reads: a slot
// for the lock proof and one slot each for input-side and output-side type
// script arguments. Serialization is canonical so signing digests are stable.
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// Serialize encodes each slot as a presence byte plus a length-prefixed
// payload, in fixed order.
func (w WitnessArgs) Serialize() []byte {
	var out []byte
	for _, slot := range [][]byte{w.Lock, w.InputType, w.OutputType} {
		if slot == nil {
			out = append(out, 0)
			continue
		}
		out = append(out, 1)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(slot)))
		out = append(out, slot...)
	}
	return out
}

// ParseWitnessArgs is the inverse of Serialize. An empty payload parses as
// the zero WitnessArgs, matching an unfilled witness slot.
func ParseWitnessArgs(raw []byte) (WitnessArgs, error) {
	var w WitnessArgs
	if len(raw) == 0 {
		return w, nil
	}
	slots := [3]*[]byte{&w.Lock, &w.InputType, &w.OutputType}
	pos := 0
	for _, slot := range slots {
		if pos >= len(raw) {
			return w, errors.New("witness args truncated")
		}
		present := raw[pos]
		pos++
		if present == 0 {
			continue
		}
		if pos+4 > len(raw) {
			return w, errors.New("witness args truncated")
		}
		n := int(binary.LittleEndian.Uint32(raw[pos:]))
		pos += 4
		if pos+n > len(raw) {
			return w, errors.New("witness args truncated")
		}
		// make keeps a present-but-empty slot distinct from an absent one.
		*slot = make([]byte, n)
		copy(*slot, raw[pos:pos+n])
		pos += n
	}
	if pos != len(raw) {
		return w, errors.New("trailing bytes after witness args")
	}
	return w, nil
}
