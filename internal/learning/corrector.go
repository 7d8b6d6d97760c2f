// Package learning supplements parser output with values the user has
// previously confirmed for recurring text fragments.
package learning

import (
	"log/slog"
	"strings"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/store"
)

const keyPrefix = "learn:"

// Field names used as key segments. Stable; stored in the KV store.
const (
	FieldCode     = "code"
	FieldSender   = "sender_name"
	FieldPhone    = "phone_number"
	FieldProvince = "province"
	FieldPrice    = "price"
	FieldCompany  = "company_name"
)

// Corrector reads and writes confirmed corrections keyed by normalized
// text fragments. The store is append-only; entries are never evicted
// (growth is unbounded, an accepted gap for now).
type Corrector struct {
	kv     store.KV
	logger *slog.Logger
}

func NewCorrector(kv store.KV, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{kv: kv, logger: logger}
}

// Enhance fills fields the parser left empty using fragments of text that
// match previously confirmed corrections. Purely additive: a value the
// parser produced is never removed or replaced, and a missing learning
// match is not an error.
func (c *Corrector) Enhance(text string, parsed entity.ShipmentFields) entity.ShipmentFields {
	out := parsed
	fragments := Fragments(text)
	if len(fragments) == 0 {
		return out
	}

	fill := func(field string, dst *string) {
		if *dst != "" {
			return
		}
		for _, frag := range fragments {
			v, found, err := c.kv.Get(entryKey(field, frag))
			if err != nil {
				c.logger.Warn("learning.lookup_failed", "field", field, "error", err)
				return
			}
			if found && v != "" {
				c.logger.Debug("learning.filled", "field", field, "fragment", frag)
				*dst = v
				return
			}
		}
	}

	fill(FieldCode, &out.Code)
	fill(FieldSender, &out.SenderName)
	fill(FieldPhone, &out.PhoneNumber)
	fill(FieldProvince, &out.Province)
	fill(FieldPrice, &out.Price)
	fill(FieldCompany, &out.CompanyName)
	return out
}

// Confirm records a user-verified value for every fragment of text, so the
// next receipt sharing a fragment resolves the field without user input.
func (c *Corrector) Confirm(text, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, frag := range Fragments(text) {
		if err := c.kv.Set(entryKey(field, frag), value); err != nil {
			return common.WrapError(err, "store learning entry")
		}
	}
	return nil
}

// Fragments splits text into its normalized lookup keys: one per
// non-trivial line, whitespace collapsed, Latin lowercased.
func Fragments(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		frag := NormalizeFragment(line)
		// Single-character lines are noise, not recurring fragments.
		if len([]rune(frag)) < 2 {
			continue
		}
		out = append(out, frag)
	}
	return out
}

// NormalizeFragment canonicalizes one fragment for use as a store key.
func NormalizeFragment(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func entryKey(field, fragment string) string {
	return keyPrefix + field + ":" + fragment
}
