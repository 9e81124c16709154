package pii

import "regexp"

// Type identifies a category of personal data.
type Type string

const (
	TypeEmail           Type = "email"
	TypePhone           Type = "phone"
	TypeIBAN            Type = "iban"
	TypeBIC             Type = "bic"
	TypePostalCode      Type = "postal_code"
	TypeDate            Type = "date"
	TypeTaxID           Type = "tax_id"
	TypeSocialInsurance Type = "social_insurance"
	TypeCreditCard      Type = "credit_card"
	TypeIPAddress       Type = "ip_address"
)

// pattern pairs a compiled expression with its mask token.
type pattern struct {
	typ    Type
	regex  *regexp.Regexp
	masked string
}

// patterns covers personal data formats common in German-language documents:
// phone numbers with +49/0049 prefixes, five-digit postal codes, the
// eleven-digit tax ID and the social insurance number format.
var patterns = []pattern{
	{TypeEmail, regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL]"},
	// A word boundary cannot precede the literal +, so the +49 branch
	// anchors on the plus sign itself.
	{TypePhone, regexp.MustCompile(`(?:\+49|\b0049|\b0)[\s\-]?(?:\d{2,4})[\s\-]?(?:\d{3,})[\s\-]?(?:\d{2,})\b`), "[PHONE]"},
	{TypeIBAN, regexp.MustCompile(`(?i)\b[A-Z]{2}\d{2}[\s]?(?:\d{4}[\s]?){4,7}\d{0,2}\b`), "[IBAN]"},
	{TypeBIC, regexp.MustCompile(`\b[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`), "[BIC]"},
	{TypePostalCode, regexp.MustCompile(`\b\d{5}\b`), "[POSTAL_CODE]"},
	{TypeDate, regexp.MustCompile(`\b(?:\d{1,2}[./]\d{1,2}[./]\d{2,4})\b`), "[DATE]"},
	{TypeTaxID, regexp.MustCompile(`\b\d{2}[\s]?\d{3}[\s]?\d{3}[\s]?\d{3}\b`), "[TAX_ID]"},
	{TypeSocialInsurance, regexp.MustCompile(`\b\d{2}[\s]?\d{6}[\s]?[A-Z][\s]?\d{3}\b`), "[SOCIAL_INSURANCE]"},
	{TypeCreditCard, regexp.MustCompile(`\b(?:\d{4}[\s\-]?){3}\d{4}\b`), "[CREDIT_CARD]"},
	{TypeIPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "[IP_ADDRESS]"},
}
