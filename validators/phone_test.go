package validators

import "testing"

func TestPhoneValidator(t *testing.T) {
	cases := []struct {
		phone string
		want  error
	}{
		{"+15551234567", nil},
		{"+442071838750", nil},
		{"", ErrPhoneEmpty},
		{"15551234567", ErrPhoneInvalid},
		{"+1555", ErrPhoneInvalid},
		{"+123456789012345678", ErrPhoneInvalid},
		{"+1555123456a", ErrPhoneInvalid},
	}

	for _, c := range cases {
		if got := PhoneValidator(c.phone); got != c.want {
			t.Errorf("PhoneValidator(%q) = %v, want %v", c.phone, got, c.want)
		}
	}
}
