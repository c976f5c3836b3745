package services

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := generateInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9a-f]{16}$`, code)
		assert.False(t, seen[code])
		seen[code] = true
	}
}

func TestGenerateTicketNumber(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	ticket, err := generateTicketNumber(now)
	require.NoError(t, err)

	m := regexp.MustCompile(`^MBC-([0-9A-Z]+)-([0-9A-F]{8})$`).FindStringSubmatch(ticket)
	require.Len(t, m, 3, ticket)
	ms, err := strconv.ParseInt(strings.ToLower(m[1]), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)
	assert.LessOrEqual(t, len(ticket), 32)
}
