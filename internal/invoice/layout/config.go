package layout

// Geometry describes the page surface in millimetres.
type Geometry struct {
	Size         string
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// ContentWidth is the printable width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.Width - g.MarginLeft - g.MarginRight
}

// Bottom is the lowest y a unit may reach.
func (g Geometry) Bottom() float64 {
	return g.Height - g.MarginBottom
}

// Thresholds are the checkpoint page-break positions. They were tuned for a
// Letter page and have no meaning beyond that surface.
type Thresholds struct {
	AfterPayment      float64
	BeforeCalibration float64
	BeforeSignature   float64
}

// Company is the shop identity printed in the header.
type Company struct {
	Name        string
	AddressLine string
	CityLine    string
	Phone       string
	Email       string
}

// Config drives one layout run.
type Config struct {
	Geometry      Geometry
	Thresholds    Thresholds
	Company       Company
	InvoicePrefix string
	DueDays       int
}

// DefaultConfig returns Letter geometry with the stock thresholds.
func DefaultConfig() Config {
	return Config{
		Geometry: Geometry{
			Size:         "Letter",
			Width:        215.9,
			Height:       279.4,
			MarginLeft:   20,
			MarginRight:  20,
			MarginTop:    20,
			MarginBottom: 15,
		},
		Thresholds: Thresholds{
			AfterPayment:      240,
			BeforeCalibration: 220,
			BeforeSignature:   250,
		},
		Company: Company{
			Name:        "Windshield Repair SA",
			AddressLine: "4512 Fredericksburg Rd",
			CityLine:    "San Antonio, TX 78201",
			Phone:       "(210) 555-0142",
			Email:       "office@windshieldrepairsa.com",
		},
		InvoicePrefix: "INV-",
	}
}
