// Package tax computes GST rates and splits for hospitality charges.
package tax

// Category enumerates chargeable revenue streams.
type Category string

const (
	CategoryRoom       Category = "ROOM"
	CategoryPackage    Category = "PACKAGE"
	CategoryFood       Category = "FOOD"
	CategoryService    Category = "SERVICE"
	CategoryConsumable Category = "CONSUMABLE"
	CategoryDamage     Category = "DAMAGE"
)

// Slab edges for accommodation GST. The lower edge is inclusive.
const (
	slabMidFloor = 5000.0
	slabTopFloor = 7500.0
)

// Fixed category rates in percent.
const (
	rateLow        = 5.0
	rateMid        = 12.0
	rateHigh       = 18.0
	DefaultService = 18.0
)

// Config carries property-level settings that affect tax computation.
type Config struct {
	// HomeStateCode is the GST state code of the property. Supplies to a
	// place in a different state are inter-state and attract IGST.
	HomeStateCode string
}

// Calculator resolves GST rates and splits. It is stateless beyond Config
// and safe for concurrent use.
type Calculator struct {
	cfg Config
}

// New builds a Calculator.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// RateFor returns the GST rate in percent for a charge category.
// dailyRate is the per-night room rate or per-day package rate; it is
// ignored for categories with fixed rates.
func (c *Calculator) RateFor(category Category, dailyRate float64) float64 {
	switch category {
	case CategoryRoom, CategoryPackage:
		switch {
		case dailyRate < slabMidFloor:
			return rateLow
		case dailyRate <= slabTopFloor:
			return rateMid
		default:
			return rateHigh
		}
	case CategoryFood, CategoryConsumable:
		return rateLow
	case CategoryDamage:
		return rateHigh
	case CategoryService:
		return DefaultService
	default:
		return DefaultService
	}
}

// PackageDailyRate derives the slab-determining daily rate for a package.
// Whole-property packages spread the price over the stay; per-room packages
// price each day directly.
func PackageDailyRate(packagePrice float64, nights int, perRoom bool) float64 {
	if perRoom {
		return packagePrice
	}
	if nights < 1 {
		nights = 1
	}
	return packagePrice / float64(nights)
}

// Split is the CGST/SGST/IGST decomposition of a tax amount.
type Split struct {
	IGST float64
	CGST float64
	SGST float64
}

// Total returns the full tax amount of the split.
func (s Split) Total() float64 {
	return s.IGST + s.CGST + s.SGST
}

// Split decomposes the tax on taxable at rate percent. Inter-state supplies
// carry the whole tax as IGST; intra-state supplies halve it into CGST and
// SGST.
func (c *Calculator) Split(taxable, rate float64, placeOfSupplyState string) Split {
	amount := taxable * rate / 100
	if placeOfSupplyState != "" && placeOfSupplyState != c.cfg.HomeStateCode {
		return Split{IGST: amount}
	}
	return Split{CGST: amount / 2, SGST: amount / 2}
}

// SplitAmount decomposes an already-computed tax amount by place of supply.
func (c *Calculator) SplitAmount(amount float64, placeOfSupplyState string) Split {
	if placeOfSupplyState != "" && placeOfSupplyState != c.cfg.HomeStateCode {
		return Split{IGST: amount}
	}
	return Split{CGST: amount / 2, SGST: amount / 2}
}

// Amount returns the plain tax amount for taxable at rate percent.
func Amount(taxable, rate float64) float64 {
	return taxable * rate / 100
}
