package parser

import "regexp"

// fieldPattern pairs a compiled expression with the capture group that
// holds the value. Patterns are tried in order and the first match wins;
// later patterns are never consulted once one hits.
type fieldPattern struct {
	re    *regexp.Regexp
	group int
}

func pat(expr string) fieldPattern { return fieldPattern{re: regexp.MustCompile(expr), group: 1} }

// Labeled forms first (Arabic then English), bare domain shorthand last.
var (
	codePatterns = []fieldPattern{
		pat(`(?i)(?:رقم الوصل|رقم البوليصة|رقم الشحنة|الكود|كود)\s*[:：#\-]?\s*([A-Za-z0-9\-]{3,20})`),
		pat(`(?i)(?:tracking|waybill|receipt)\s*(?:no|number|#)?\s*[:：#\-]?\s*([A-Za-z0-9\-]{3,20})`),
		pat(`(?i)\bcode\s*[:：#\-]?\s*([A-Za-z0-9\-]{3,20})`),
		// A bare 6-10 digit run that is not part of a phone number.
		pat(`(?:^|[^\d])(\d{6,10})(?:[^\d]|$)`),
	}

	senderPatterns = []fieldPattern{
		pat(`(?:اسم المرسل|اسم الزبون|المرسل|الزبون|الاسم)\s*[:：\-]?\s*([^\n،,]{2,60})`),
		pat(`(?i)(?:sender|customer)\s*(?:name)?\s*[:：\-]?\s*([^\n,]{2,60})`),
		pat(`(?i)\bname\s*[:：\-]?\s*([^\n,]{2,60})`),
	}

	phonePatterns = []fieldPattern{
		pat(`(?:رقم الهاتف|الهاتف|هاتف|موبايل|الموبايل|جوال|رقم)\s*[:：\-]?\s*(\+?[\d\s\-]{10,17})`),
		pat(`(?i)(?:phone|mobile|tel)\s*(?:no|number)?\s*[:：\-]?\s*(\+?[\d\s\-]{10,17})`),
		// Bare Iraqi mobile forms: 07XXXXXXXXX, 9647XXXXXXXXX, 7XXXXXXXXX.
		pat(`(?:^|[^\d])(07\d{9})(?:[^\d]|$)`),
		pat(`(?:^|[^\d])(\+?964\s?7\d{9})(?:[^\d]|$)`),
		pat(`(?:^|[^\d])(7\d{9})(?:[^\d]|$)`),
	}

	provincePatterns = []fieldPattern{
		pat(`(?:المحافظة|محافظة|المدينة|مدينة|العنوان)\s*[:：\-]?\s*([^\n،,]{2,40})`),
		pat(`(?i)(?:province|city|governorate|address)\s*[:：\-]?\s*([^\n,]{2,40})`),
	}

	pricePatterns = []fieldPattern{
		pat(`(?:السعر|المبلغ|الاجور|الأجور|اجور|التحصيل|قيمة الشحنة)\s*[:：\-]?\s*([\d., ]+\s*(?:دينار|د\.ع|الف|ألف)?)`),
		pat(`(?i)(?:price|amount|total|cod)\s*[:：\-]?\s*([\d., ]+\s*(?:iqd|دينار)?)`),
		pat(`([\d]{1,3}(?:[.,]\d{3})+)\s*(?:دينار|د\.ع|iqd)`),
	}

	companyPatterns = []fieldPattern{
		pat(`(?:اسم الشركة|الشركة|شركة|مكتب)\s*[:：\-]?\s*([^\n،,]{2,60})`),
		pat(`(?i)(?:company|office)\s*(?:name)?\s*[:：\-]?\s*([^\n,]{2,60})`),
	}
)
