package codec_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/adapters/codec"
	"go.trai.ch/press/internal/core/domain"
)

func TestArtifactRoundTrip(t *testing.T) {
	original := domain.Artifact{
		Node:      domain.NewNodeID("posts/a.md"),
		Kind:      domain.KindDocument,
		MediaType: "text/html",
		Content:   []byte("<p>hi</p>"),
		Meta:      map[string]string{domain.MetaSummary: "hi"},
	}

	data, err := codec.Marshal(original)
	require.NoError(t, err)

	var decoded domain.Artifact
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestMarshalIsDeterministic(t *testing.T) {
	m := map[string]string{"b": "2", "a": "1", "c": "3"}
	first, err := codec.Marshal(m)
	require.NoError(t, err)
	for range 10 {
		again, err := codec.Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFingerprintEncodesAsText(t *testing.T) {
	fp := domain.Fingerprint{0xab}
	data, err := codec.Marshal(fp)
	require.NoError(t, err)

	var s string
	require.NoError(t, codec.Unmarshal(data, &s))
	assert.Equal(t, fp.String(), s)
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]any{"op": "log"}))
	require.NoError(t, enc.Encode(map[string]any{"op": "done"}))

	dec := codec.NewDecoder(&buf)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "log", first["op"])
	assert.Equal(t, "done", second["op"])
}
