package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain name  ", "plain name"},
		{"<script>alert('x')</script>", "scriptalert(x)/script"},
		{`Robert"; DROP TABLE patients --`, "Robert DROP TABLE patients"},
		{"note /* hidden */ text", "note  hidden  text"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, String(tt.in), "input %q", tt.in)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("doctor@example.com"))
	assert.True(t, ValidEmail("a.b+c@sub.domain.org"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@tld"))
	assert.False(t, ValidEmail(""))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("dr_house"))
	assert.True(t, ValidUsername("abc"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("has space"))
	assert.False(t, ValidUsername("way-too-long-username-over-thirty-chars"))
}

func TestValidPassword(t *testing.T) {
	assert.True(t, ValidPassword("secret1"))
	assert.False(t, ValidPassword("short"))
}
