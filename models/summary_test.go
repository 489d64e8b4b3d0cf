package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "00:00 h", FormatMinutes(0))
	assert.Equal(t, "07:30 h", FormatMinutes(450))
	assert.Equal(t, "40:05 h", FormatMinutes(2405))
	assert.Equal(t, "00:00 h", FormatMinutes(-10))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Max", UserInfo{DisplayName: "Max Mustermann"}.FirstName())
	assert.Equal(t, "Anna", UserInfo{DisplayName: "Anna Maria Schmidt"}.FirstName())
	assert.Equal(t, "Cher", UserInfo{DisplayName: "Cher"}.FirstName())
	assert.Equal(t, "", UserInfo{}.FirstName())
}
