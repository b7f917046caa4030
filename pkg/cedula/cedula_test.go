package cedula

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildValid constructs a cedula with a correct check digit from a 9-digit prefix.
func buildValid(prefix string) string {
	coeff := [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}
	sum := 0
	for i := 0; i < 9; i++ {
		p := int(prefix[i]-'0') * coeff[i]
		if p > 9 {
			p -= 9
		}
		sum += p
	}
	check := 0
	if sum%10 != 0 {
		check = 10 - sum%10
	}
	return fmt.Sprintf("%s%d", prefix, check)
}

func TestValidateAccepts(t *testing.T) {
	for _, prefix := range []string{"171234567", "010203040", "240504030", "095678912"} {
		ced := buildValid(prefix)
		require.NoError(t, Validate(ced), "cedula %s", ced)
	}
}

func TestValidateChecksumMutation(t *testing.T) {
	ced := buildValid("171234567")
	last := ced[9]
	mutated := ced[:9] + string((last-'0'+1)%10+'0')
	assert.ErrorIs(t, Validate(mutated), ErrChecksum)
}

func TestValidateReasons(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"blank", "", ErrBlank},
		{"spaces", "   ", ErrBlank},
		{"letters", "17123A5678", ErrNotNumeric},
		{"short", "12345", ErrLength},
		{"long", "12345678901", ErrLength},
		{"province zero", buildValid("001234567"), ErrProvince},
		{"province too high", buildValid("251234567"), ErrProvince},
		{"class digit", buildValid("176234567"), ErrClassDigit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.input), tc.want)
		})
	}
}

func TestValidateIfPresent(t *testing.T) {
	assert.NoError(t, ValidateIfPresent(""))
	assert.NoError(t, ValidateIfPresent("  "))
	assert.ErrorIs(t, ValidateIfPresent("12345"), ErrLength)
	assert.NoError(t, ValidateIfPresent(buildValid("171234567")))
}
