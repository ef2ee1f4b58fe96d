package license

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	ids := []string{"BPDON", "BPJOE", "IK4080", "TA2666", "SA4327", "KN4484"}
	for _, id := range ids {
		require.Equal(t, Generate(id), Generate(id), "id %s", id)
	}
}

func TestGenerateGoldenValues(t *testing.T) {
	t.Parallel()

	// Pinned outputs of the 32-bit rolling hash. These must never change:
	// codes already handed to employees are derived from exactly this
	// arithmetic, sign behavior included.
	golden := map[string]string{
		"BPDON":  "BP-3541-2721",
		"BPJOE":  "BP-9298-3081",
		"IK4080": "BP-8154-6135", // hash is negative here, exercises abs
		"TA2666": "BP-6575-4161",
		"SA4327": "BP-9150-9947",
	}
	for id, want := range golden {
		assert.Equal(t, want, Generate(id), "id %s", id)
	}
}

func TestGenerateDigitOnlyOutput(t *testing.T) {
	t.Parallel()

	// The advertised pattern allows letters, but the generator only ever
	// emits digits. That narrower behavior is load-bearing.
	digitOnly := regexp.MustCompile(`^BP-[0-9]{4}-[0-9]{4}$`)
	pattern := regexp.MustCompile(Pattern)

	for _, id := range []string{"BPDON", "IK5539", "OT5576", "TA5845", "A", "ZZZZZZZZ"} {
		code := Generate(id)
		assert.Regexp(t, digitOnly, code)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateDistinctInputsUsuallyDiffer(t *testing.T) {
	t.Parallel()

	// Not a collision-resistance claim, just a sanity check that the fold
	// actually mixes input characters.
	assert.NotEqual(t, Generate("BPDON"), Generate("BPJOE"))
	assert.NotEqual(t, Generate("IK4080"), Generate("IK4344"))
}
