package ocr

import "regexp"

var (
	rePhone  = regexp.MustCompile(`(?:\+?964|0)?7\d{9}`)
	reCode   = regexp.MustCompile(`\b\d{6,10}\b`)
	reAmount = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+`)
	reArabic = regexp.MustCompile(`[\x{0600}-\x{06FF}]{3,}`)
)

// heuristicConfidence scores decoded text 0..100 from receipt artifacts:
// a phone-shaped number, a code-shaped number, an amount and Arabic words
// each add to a small base.
func heuristicConfidence(txt string) int {
	score := 20
	if rePhone.MatchString(txt) {
		score += 25
	}
	if reCode.MatchString(txt) {
		score += 15
	}
	if reAmount.MatchString(txt) {
		score += 15
	}
	if reArabic.MatchString(txt) {
		score += 15
	}
	if len(txt) > 120 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
