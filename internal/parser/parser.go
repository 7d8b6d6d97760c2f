// Package parser converts raw extraction-engine text into structured
// shipment fields using ordered pattern lists and embedded-JSON scraping.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Parse maps raw text to a partial shipment record. For each field the
// ordered pattern list is evaluated with early exit; an embedded JSON
// object, if present and parseable, overrides regex-derived values of the
// same name since the engines emit it only when they are confident.
func Parse(text string) entity.ShipmentFields {
	fields := entity.ShipmentFields{
		Code:        firstMatch(codePatterns, text),
		SenderName:  cleanLine(firstMatch(senderPatterns, text)),
		PhoneNumber: firstMatch(phonePatterns, text),
		Province:    cleanLine(firstMatch(provincePatterns, text)),
		Price:       firstMatch(pricePatterns, text),
		CompanyName: cleanLine(firstMatch(companyPatterns, text)),
	}

	if js, ok := scrapeJSON(text); ok {
		fields.Override(js)
	}

	fields.PhoneNumber = NormalizePhone(fields.PhoneNumber)
	fields.Price = NormalizePrice(fields.Price)
	return fields
}

func firstMatch(patterns []fieldPattern, text string) string {
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(text); m != nil && len(m) > p.group {
			v := strings.TrimSpace(m[p.group])
			if v != "" {
				return v
			}
		}
	}
	return ""
}

func cleanLine(s string) string {
	s = strings.Trim(s, " \t:：-·.")
	return strings.Join(strings.Fields(s), " ")
}

// jsonFields mirrors the key spellings the extraction engines are known
// to emit. Both snake_case and camelCase appear in the wild.
type jsonFields struct {
	Code         string `json:"code"`
	SenderName   string `json:"sender_name"`
	SenderNameCC string `json:"senderName"`
	Phone        string `json:"phone"`
	PhoneNumber  string `json:"phone_number"`
	PhoneCC      string `json:"phoneNumber"`
	Province     string `json:"province"`
	Price        string `json:"price"`
	CompanyName  string `json:"company_name"`
	CompanyCC    string `json:"companyName"`
}

// scrapeJSON finds the first balanced {...} block in text and tries to
// decode it as a shipment-field object.
func scrapeJSON(text string) (entity.ShipmentFields, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > start {
			var jf jsonFields
			if err := json.Unmarshal([]byte(text[start:end+1]), &jf); err == nil {
				out := entity.ShipmentFields{
					Code:        jf.Code,
					SenderName:  coalesce(jf.SenderName, jf.SenderNameCC),
					PhoneNumber: coalesce(jf.PhoneNumber, jf.Phone, jf.PhoneCC),
					Province:    jf.Province,
					Price:       jf.Price,
					CompanyName: coalesce(jf.CompanyName, jf.CompanyCC),
				}
				if out != (entity.ShipmentFields{}) {
					return out, true
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return entity.ShipmentFields{}, false
}

// matchBrace returns the index of the brace closing the one at open, or -1.
// String literals are skipped so braces inside values do not confuse the
// scan.
func matchBrace(s string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
