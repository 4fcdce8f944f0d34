package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingerDefaultsTimeout(t *testing.T) {
	p := NewPinger(0)
	assert.Equal(t, defaultTimeout, p.timeout)

	p = NewPinger(5 * time.Second)
	assert.Equal(t, 5*time.Second, p.timeout)
}

func TestPingRejectsNonIPv4Host(t *testing.T) {
	p := NewPinger(time.Second)

	// An IPv6 literal can never resolve on the ip4 network, and no DNS
	// lookup is involved, so this fails the same way everywhere.
	up, _, err := p.Ping(context.Background(), "::1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errFailedToResolveHost)
	assert.False(t, up)
}
