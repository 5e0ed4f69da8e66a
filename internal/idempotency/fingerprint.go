package idempotency

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// Fingerprint returns a stable digest of the cart so a reused idempotency key can be
// matched against the request that created it. Item order does not matter.
func Fingerprint(items []model.OrderItem, tip decimal.Decimal) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, strings.Join([]string{
			item.ProductID,
			strconv.Itoa(item.Quantity),
			item.UnitPrice.String(),
			item.Category,
		}, "\x1f"))
	}
	sort.Strings(lines)

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\x1e')
	}
	b.WriteString("tip=")
	b.WriteString(tip.String())

	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Key namespaces a client supplied key by user. The user id is length prefixed so no
// pair of ids and keys can collide on the separator.
func Key(userID, clientKey string) string {
	return strconv.Itoa(len(userID)) + ":" + userID + ":" + clientKey
}
