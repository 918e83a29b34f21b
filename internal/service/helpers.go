package service

import (
	"strings"

	"github.com/samber/lo"
)

// uniqueIDs normalises an id list, dropping blanks and duplicates while keeping order.
func uniqueIDs(ids []string) []string {
	cleaned := lo.Uniq(lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		id = strings.ToLower(strings.TrimSpace(id))
		return id, id != ""
	}))
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

// capIP keeps addresses that fit the column and replaces the rest with "unknown".
func capIP(ip string) *string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil
	}
	if len(ip) > maxIPLength {
		ip = "unknown"
	}
	return &ip
}

const (
	maxIPLength        = 50
	maxUserAgentLength = 500
)
