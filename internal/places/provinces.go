package places

// Provinces is the canonical list of the 18 Iraqi provinces. Order matters:
// earlier entries win ties in prefix matching.
var Provinces = []string{
	"بغداد",
	"البصرة",
	"نينوى",
	"أربيل",
	"الأنبار",
	"بابل",
	"كربلاء",
	"النجف",
	"كركوك",
	"ديالى",
	"ذي قار",
	"ميسان",
	"المثنى",
	"الديوانية",
	"واسط",
	"صلاح الدين",
	"دهوك",
	"السليمانية",
}

// corrections maps common misspellings and foreign spellings to the
// canonical province. Keys are stored in normalized form (see normalize).
var corrections = map[string]string{
	// Baghdad
	"بقداد":  "بغداد",
	"بغدات":  "بغداد",
	"بكداد":  "بغداد",
	"baghdad": "بغداد",
	"bagdad":  "بغداد",
	// Basra
	"بصره":  "البصرة",
	"بصرة":  "البصرة",
	"البصره": "البصرة",
	"basra":  "البصرة",
	"basrah": "البصرة",
	// Nineveh (Mosul)
	"نينوه":  "نينوى",
	"الموصل": "نينوى",
	"موصل":   "نينوى",
	"mosul":  "نينوى",
	"nineveh": "نينوى",
	// Erbil
	"اربل":  "أربيل",
	"هولير": "أربيل",
	"erbil": "أربيل",
	"arbil": "أربيل",
	"hawler": "أربيل",
	// Anbar (Ramadi)
	"الرمادي": "الأنبار",
	"رمادي":   "الأنبار",
	"anbar":   "الأنبار",
	"ramadi":  "الأنبار",
	// Babil (Hillah)
	"الحلة": "بابل",
	"حله":   "بابل",
	"babel": "بابل",
	"babil": "بابل",
	"hillah": "بابل",
	// Karbala
	"كربلا":   "كربلاء",
	"كربله":   "كربلاء",
	"karbala": "كربلاء",
	// Najaf
	"نجف":   "النجف",
	"najaf": "النجف",
	// Kirkuk
	"كركوگ":  "كركوك",
	"kirkuk": "كركوك",
	// Diyala (Baqubah)
	"ديالا":   "ديالى",
	"بعقوبة":  "ديالى",
	"بعقوبه":  "ديالى",
	"diyala":  "ديالى",
	"baqubah": "ديالى",
	// Dhi Qar (Nasiriyah)
	"ذيقار":     "ذي قار",
	"الناصرية":  "ذي قار",
	"ناصرية":    "ذي قار",
	"الناصريه":  "ذي قار",
	"nasiriyah": "ذي قار",
	"dhi qar":   "ذي قار",
	// Maysan (Amarah)
	"العمارة": "ميسان",
	"عمارة":   "ميسان",
	"العماره": "ميسان",
	"maysan":  "ميسان",
	"amarah":  "ميسان",
	// Muthanna (Samawah)
	"السماوة":  "المثنى",
	"سماوة":    "المثنى",
	"السماوه":  "المثنى",
	"muthanna": "المثنى",
	"samawah":  "المثنى",
	// Qadisiyyah (Diwaniyah)
	"ديوانية":   "الديوانية",
	"ديوانيه":   "الديوانية",
	"القادسية":  "الديوانية",
	"قادسية":    "الديوانية",
	"diwaniyah": "الديوانية",
	"qadisiyyah": "الديوانية",
	// Wasit (Kut)
	"الكوت": "واسط",
	"كوت":   "واسط",
	"wasit": "واسط",
	"kut":   "واسط",
	// Salah al-Din (Tikrit)
	"تكريت":    "صلاح الدين",
	"صلاحدين":  "صلاح الدين",
	"صلاح دين": "صلاح الدين",
	"tikrit":   "صلاح الدين",
	"salahaddin": "صلاح الدين",
	// Duhok
	"دهوگ":  "دهوك",
	"duhok": "دهوك",
	"dohuk": "دهوك",
	// Sulaymaniyah
	"سليمانية":     "السليمانية",
	"السليمانيه":   "السليمانية",
	"سليمانيه":     "السليمانية",
	"sulaymaniyah": "السليمانية",
	"slemani":      "السليمانية",
}

// cityAliases holds contains-style hints per canonical province: partial
// names, colloquial forms and major-city spellings that show up inside a
// longer address line.
var cityAliases = map[string][]string{
	"بغداد":      {"بغد", "بقد", "بكد", "baghdad", "الكرخ", "الرصافة", "الصدر"},
	"البصرة":     {"بصر", "basra", "الزبير", "شط العرب"},
	"نينوى":      {"نينو", "موصل", "mosul", "تلعفر"},
	"أربيل":      {"اربيل", "erbil", "arbil", "هولير", "شقلاوة"},
	"الأنبار":    {"انبار", "رمادي", "فلوجة", "فلوجه", "anbar", "ramadi", "falluja"},
	"بابل":       {"بابل", "حلة", "حله", "babil", "hillah", "المسيب"},
	"كربلاء":     {"كربل", "karbala"},
	"النجف":      {"نجف", "najaf", "الكوفة", "كوفة"},
	"كركوك":      {"كركو", "kirkuk", "الحويجة"},
	"ديالى":      {"ديال", "بعقوب", "diyala", "baqub", "المقدادية"},
	"ذي قار":     {"ذي قار", "ذيقار", "ناصري", "nasiri", "الشطرة"},
	"ميسان":      {"ميسان", "عمار", "maysan", "amarah", "المجر"},
	"المثنى":     {"مثنى", "سماو", "muthanna", "samaw", "الرميثة"},
	"الديوانية":  {"ديواني", "قادسي", "diwani", "عفك"},
	"واسط":       {"واسط", "كوت", "wasit", "kut", "الصويرة", "النعمانية"},
	"صلاح الدين": {"صلاح", "تكريت", "سامراء", "tikrit", "samarra"},
	"دهوك":       {"دهوك", "دهوگ", "duhok", "dohuk", "زاخو"},
	"السليمانية": {"سليماني", "sulaym", "slemani", "حلبجة"},
}
