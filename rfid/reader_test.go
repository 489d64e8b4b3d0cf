package rfid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUID(t *testing.T) {
	assert.Equal(t, "0B79D206", FormatUID([]byte{0x0B, 0x79, 0xD2, 0x06}))
	assert.Equal(t, "", FormatUID(nil))
}

func TestNoopReaderNeverDetects(t *testing.T) {
	r := NewNoop()

	uid, err := r.ReadUID(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, uid)
	assert.NoError(t, r.Close())
}
