package card

import "strings"

// paymentMarkers are substrings that identify UPI/payment QR payloads,
// which should never be imported as contact cards.
var paymentMarkers = []string{
	"upi://", "upi:", "vpa=", "pa=", "pn=", "tr=", "mc=",
	"gpay", "google pay", "tez", "phonepe", "paytm", "bhim", "bharatqr", "npci",
}

// fieldLabels maps the lower-cased label of a scanned payload line to a
// setter for the corresponding field.
var fieldLabels = map[string]func(*Fields, string){
	"name":       func(f *Fields, v string) { f.Name = v },
	"occupation": func(f *Fields, v string) { f.Occupation = v },
	"email":      func(f *Fields, v string) { f.Email = v },
	"phone":      func(f *Fields, v string) { f.Phone = v },
	"instagram":  func(f *Fields, v string) { f.Instagram = v },
	"website":    func(f *Fields, v string) { f.Website = v },
	"address":    func(f *Fields, v string) { f.Address = v },
}

// ParseScannedPayload decodes the "Label: value" line format produced by
// card QR codes. Unknown labels and lines without a colon are ignored,
// so arbitrary scanned text degrades to empty fields rather than an
// error.
func ParseScannedPayload(raw string) Fields {
	var f Fields

	for _, line := range strings.Split(raw, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		set, known := fieldLabels[strings.ToLower(strings.TrimSpace(label))]
		if !known {
			continue
		}

		set(&f, strings.TrimSpace(value))
	}

	return f
}

// HasMinimumInfo reports whether the fields carry enough content to be
// worth saving as a card: a name plus at least one of phone or email.
func (f Fields) HasMinimumInfo() bool {
	if strings.TrimSpace(f.Name) == "" {
		return false
	}

	return strings.TrimSpace(f.Phone) != "" || strings.TrimSpace(f.Email) != ""
}

// LooksLikePaymentCode reports whether a raw scanned payload is likely a
// UPI/payment QR or a bare URL rather than a contact card.
func LooksLikePaymentCode(raw string) bool {
	lower := strings.ToLower(raw)

	for _, marker := range paymentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	hasFieldKeyword := false

	for label := range fieldLabels {
		if label == "occupation" {
			// The original heuristic only checks the six contact labels.
			continue
		}

		if strings.Contains(lower, label) {
			hasFieldKeyword = true
			break
		}
	}

	if (strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) && !hasFieldKeyword {
		return true
	}

	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return r == '\n' || r == ' ' || r == '\t'
	})

	return len(tokens) <= 1 && !hasFieldKeyword
}
