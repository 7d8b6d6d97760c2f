package ai

// buildSystemPrompt instructs the model to transcribe a shipment receipt
// image and extract the structured fields we care about.
func buildSystemPrompt() string {
	return "You are a data-entry assistant for Iraqi delivery companies. " +
		"You receive a photo of a paper shipment receipt, usually handwritten " +
		"or printed in Arabic, sometimes English. Transcribe the full text, " +
		"then extract these fields when present: code (receipt/tracking " +
		"number), sender_name, phone_number (Iraqi mobile, keep digits as " +
		"written), province (Iraqi governorate), price (amount in IQD), " +
		"company_name (delivery company). Leave a field empty rather than " +
		"guessing. Report a confidence between 0 and 100 for the whole " +
		"transcription."
}

func buildUserPrompt(filename string) string {
	out := "Extract the receipt text and fields from the attached image."
	if filename != "" {
		out += " Filename hint: " + filename + "."
	}
	return out
}
