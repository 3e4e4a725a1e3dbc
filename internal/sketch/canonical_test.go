package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(data))
}

func TestMarshalCanonical_Floats(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"integral", 100, "100"},
		{"negative zero", -0.0, "0"},
		{"fraction", 0.1, "0.1"},
		{"round trip", 1.0 / 3.0, "0.3333333333333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCanonical(map[string]any{"v": tt.in})
			require.NoError(t, err)
			assert.Equal(t, `{"v":`+tt.want+`}`, string(data))
		})
	}
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"v": nan()})
	assert.Error(t, err)
}

func nan() float64 {
	z := 0.0
	return z / z
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"s": "a<b>&c"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"a<b>&c"}`, string(data))
}

func TestMarshalCanonical_ControlCharacters(t *testing.T) {
	data, err := MarshalCanonical("line1\nline2\x01")
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2"`, string(data))
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"v": nil})
	assert.Error(t, err)
}

func TestDocumentHash_Deterministic(t *testing.T) {
	doc := validDoc()
	h1, err := DocumentHash(doc)
	require.NoError(t, err)
	h2, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "hex-encoded SHA-256")
}

func TestDocumentHash_SensitiveToGeometry(t *testing.T) {
	doc := validDoc()
	h1, err := DocumentHash(doc)
	require.NoError(t, err)

	doc.Elements[0].End.X += 1e-9
	h2, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "any geometric change must change the hash")
}

func TestConstraintHash_IgnoresID(t *testing.T) {
	c1 := Constraint{ID: "k1", Type: Horizontal, Lines: []LineRef{{Element: "a"}}}
	c2 := Constraint{ID: "k2", Type: Horizontal, Lines: []LineRef{{Element: "a"}}}

	h1, err := ConstraintHash(c1)
	require.NoError(t, err)
	h2, err := ConstraintHash(c2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "hash is over content, not assigned id")

	c3 := Constraint{ID: "k3", Type: Vertical, Lines: []LineRef{{Element: "a"}}}
	h3, err := ConstraintHash(c3)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
