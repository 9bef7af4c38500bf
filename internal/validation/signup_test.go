package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_99", false},
		{"valid with hyphen", "al-ice", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"spaces", "al ice", true},
		{"leading underscore", "_alice", true},
		{"trailing hyphen", "alice-", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("CorrectHorse9Battery"))
	assert.Error(t, ValidatePassword("Short1a"))
	assert.Error(t, ValidatePassword("alllowercase123456"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE123456"))
	assert.Error(t, ValidatePassword("NoDigitsInHerePassword"))
	assert.Error(t, ValidatePassword(strings.Repeat("Aa1", 50)))
}
