package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	inviteCodeBytes    = 8
	inviteCodeAttempts = 3
	ticketAttempts     = 3
	ticketRandomBytes  = 4
	ticketPrefix       = "MBC"
)

// generateInviteCode returns 16 lowercase hex characters.
func generateInviteCode() (string, error) {
	b := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// generateTicketNumber returns MBC-<base36 unix ms>-<8 hex>, all upper case.
func generateTicketNumber(now time.Time) (string, error) {
	b := make([]byte, ticketRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return ticketPrefix + "-" + stamp + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}
