package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"+998901234567":     "+998901234567",
		"+998 90 123 45 67": "+998901234567",
		"901234567":         "+998901234567",
		"90 123 45 67":      "+998901234567",
		"998901234567":      "+998901234567",
		"+901234567":        "+998901234567",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("+998901234567"))
	assert.True(t, Valid("90 123 45 67"))
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("+99890123456a"))
}
