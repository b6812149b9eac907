package skeleton

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWitnessArgs_SerializeParse(t *testing.T) {
	cases := []struct {
		name string
		args WitnessArgs
	}{
		{"empty", WitnessArgs{}},
		{"lock only", WitnessArgs{Lock: []byte{1, 2, 3}}},
		{"all slots", WitnessArgs{Lock: []byte{1}, InputType: []byte{}, OutputType: []byte{2, 3}}},
		{"output type only", WitnessArgs{OutputType: []byte("payload")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.args.Serialize()
			back, err := ParseWitnessArgs(raw)
			require.NoError(t, err)
			require.Equal(t, raw, back.Serialize())
		})
	}
}

func TestParseWitnessArgs_EmptyPayloadIsZero(t *testing.T) {
	w, err := ParseWitnessArgs(nil)
	require.NoError(t, err)
	require.Nil(t, w.Lock)
	require.Nil(t, w.InputType)
	require.Nil(t, w.OutputType)
}

func TestParseWitnessArgs_Truncated(t *testing.T) {
	raw := WitnessArgs{Lock: []byte{1, 2, 3, 4}}.Serialize()
	for i := 1; i < len(raw); i++ {
		_, err := ParseWitnessArgs(raw[:i])
		require.Error(t, err, "prefix of length %d must not parse", i)
	}

	_, err := ParseWitnessArgs(append(raw, 0xff))
	require.Error(t, err)
}

func TestHexBytes_JSON(t *testing.T) {
	b := HexBytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, `"0xdeadbeef"`, string(data))

	var back HexBytes
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, b, back)
}
