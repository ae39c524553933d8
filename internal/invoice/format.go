package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the display layout for invoice and due dates.
const DateLayout = "January 2, 2006"

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders an amount as US dollars with thousands grouping,
// e.g. $1,234.50 or -$12.00.
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()
	return sign + moneyPrinter.Sprintf("$%d", whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}

// FormatDate renders a date as "January 2, 2006". A zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

var jobTypeLabels = map[JobType]string{
	JobTypeWindshieldReplacement: "Windshield Replacement",
	JobTypeWindshieldRepair:      "Windshield Repair (Rock Chip)",
	JobTypeDoorGlass:             "Door Glass",
	JobTypeBackGlass:             "Back Glass",
	JobTypeQuarterGlass:          "Quarter Glass",
	JobTypeSunroof:               "Sunroof",
	JobTypeSideMirror:            "Side Mirror",
}

// FormatJobType renders the display label for a job type code.
func FormatJobType(t JobType) string {
	if label, ok := jobTypeLabels[t]; ok {
		return label
	}
	return "Auto Glass Service"
}

// InvoiceNumber builds prefix + the last four characters of the job number.
func InvoiceNumber(prefix, jobNumber string) string {
	runes := []rune(strings.TrimSpace(jobNumber))
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	return prefix + string(runes)
}

// CustomerName is the business name for businesses that have one, else
// "first last".
func (j *Job) CustomerName() string {
	if j.IsBusiness && strings.TrimSpace(j.BusinessName) != "" {
		return strings.TrimSpace(j.BusinessName)
	}
	return joinNonEmpty(" ", j.FirstName, j.LastName)
}

// CityLine renders "city, state zip" only when all three are present.
func (j *Job) CityLine() string {
	city, state, zip := strings.TrimSpace(j.City), strings.TrimSpace(j.State), strings.TrimSpace(j.ZipCode)
	if city == "" || state == "" || zip == "" {
		return ""
	}
	return city + ", " + state + " " + zip
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
