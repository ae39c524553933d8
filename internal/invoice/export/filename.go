package export

import (
	"strings"
	"time"
	"unicode"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// Extension is appended to every generated invoice filename.
const Extension = ".pdf"

// Filename derives the download name: customer, compact invoice date and
// invoice number joined by underscores. Identical inputs always give the
// same name.
func Filename(job *invoice.Job, invoiceDate time.Time, invoiceNumber string) string {
	parts := []string{
		underscore(customerPart(job)),
		compactDate(invoice.FormatDate(invoiceDate)),
		underscore(invoiceNumber),
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "invoice" + Extension
	}
	return strings.Join(kept, "_") + Extension
}

func customerPart(job *invoice.Job) string {
	if job == nil {
		return ""
	}
	if job.IsBusiness {
		if name := strings.TrimSpace(job.BusinessName); name != "" {
			return name
		}
	}
	last, first := strings.TrimSpace(job.LastName), strings.TrimSpace(job.FirstName)
	switch {
	case last != "" && first != "":
		return last + "_" + first
	case last != "":
		return last
	default:
		return first
	}
}

// reservedChars cannot appear in a filename on at least one common filesystem.
const reservedChars = `/\:*?"<>|`

// underscore turns path separators, reserved characters and control
// characters into underscores, then collapses every whitespace run into a
// single underscore.
func underscore(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return r
		case unicode.IsControl(r), strings.ContainsRune(reservedChars, r):
			return '_'
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), "_")
}

// compactDate drops whitespace and commas: "March 4, 2024" becomes "March42024".
func compactDate(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
