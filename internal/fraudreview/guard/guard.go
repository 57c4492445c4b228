// Package guard decides whether an ENS notification may be acted on: source
// address allow-list, merchant ownership and environment.
package guard

import (
	"context"
	"math"
	"net"
	"strconv"
	"strings"

	"github.com/smallbiznis/fraudreview/internal/fraudreview/domain"
)

const (
	ConfigKountID     = "payment/braintree/kount_id"
	ConfigAllowedIPs  = "payment/braintree/kount_allowed_ips"
	ConfigEnvironment = "payment/braintree/kount_environment"

	environmentSandbox = "sandbox"
	// defaultPrefix is appended to bare addresses in the allow-list.
	defaultPrefix = "255"
)

type Guard struct {
	config domain.ConfigStore
	stores domain.StoreDirectory
}

func New(config domain.ConfigStore, stores domain.StoreDirectory) *Guard {
	return &Guard{config: config, stores: stores}
}

// GetAllowedIPs returns the configured allow-list entries, trimmed, empties dropped.
func (g *Guard) GetAllowedIPs() []string {
	raw := g.config.GetValue(ConfigAllowedIPs)
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsAllowed reports whether remoteAddress matches an allow-list entry. An empty
// allow-list admits every address.
func (g *Guard) IsAllowed(remoteAddress string) bool {
	allowed := g.GetAllowedIPs()
	if len(allowed) == 0 {
		return true
	}
	for _, entry := range allowed {
		if IsIPInRange(remoteAddress, entry) {
			return true
		}
	}
	return false
}

func (g *Guard) IsSandbox() bool {
	return g.config.GetValue(ConfigEnvironment) == environmentSandbox
}

// ValidateMerchantID compares merchantID with the kount id of the first store
// only. Stores after the first are never consulted.
func (g *Guard) ValidateMerchantID(ctx context.Context, merchantID int64) (bool, error) {
	stores, err := g.stores.GetStores(ctx)
	if err != nil {
		return false, err
	}
	for _, store := range stores {
		configured := LenientInt(g.config.GetStoreValue(ConfigKountID, store.ID))
		return configured == merchantID, nil
	}
	return false, nil
}

// IsIPInRange matches ip against an "address/prefix" range using 64-bit mask
// arithmetic: wildcard = 2^(32-prefix)-1, mask = ^wildcard. Ranges without a
// prefix get /255, where the wildcard is -1 and the mask is zero, so a bare
// address matches any ip. Unparseable addresses count as 0.
func IsIPInRange(ip, ipRange string) bool {
	if !strings.Contains(ipRange, "/") {
		ipRange += "/" + defaultPrefix
	}
	base, prefixRaw, _ := strings.Cut(ipRange, "/")

	prefix, err := strconv.Atoi(strings.TrimSpace(prefixRaw))
	if err != nil {
		return false
	}

	wildcard := math.Pow(2, float64(32-prefix)) - 1
	if math.IsInf(wildcard, 0) || wildcard > math.MaxInt64 {
		return false
	}
	mask := ^int64(wildcard)

	return ipToLong(ip)&mask == ipToLong(base)&mask
}

func ipToLong(raw string) int64 {
	parsed := net.ParseIP(strings.TrimSpace(raw))
	if parsed == nil {
		return 0
	}
	v4 := parsed.To4()
	if v4 == nil {
		return 0
	}
	return int64(v4[0])<<24 | int64(v4[1])<<16 | int64(v4[2])<<8 | int64(v4[3])
}

// LenientInt parses the leading integer of s, returning 0 when there is none.
func LenientInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}
