package pipeline

import (
	"fmt"
	"math"
	"time"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
)

// Enrich concatenates the channel tables in the order given, left-joins
// each row to the business totals of its date and derives CTR, CPC, CPA
// and ROAS. Every marketing row yields exactly one output row. Any NaN or
// infinite value left after derivation is replaced with 0.
func Enrich(marketing [][]models.MarketingRecord, business []models.BusinessRecord) ([]models.EnrichedRecord, error) {
	byDate := make(map[time.Time]models.BusinessRecord, len(business))
	for _, b := range business {
		if _, dup := byDate[b.Date]; dup {
			return nil, errors.New(errors.CodeDuplicateKey,
				fmt.Sprintf("business date %s is not unique", b.Date.Format("2006-01-02")))
		}
		byDate[b.Date] = b
	}

	total := 0
	for _, table := range marketing {
		total += len(table)
	}

	out := make([]models.EnrichedRecord, 0, total)
	for _, table := range marketing {
		for _, m := range table {
			b, matched := byDate[m.Date]
			if !matched {
				b = models.BusinessRecord{Date: m.Date}
			}
			out = append(out, derive(m, b, matched))
		}
	}
	return out, nil
}

func derive(m models.MarketingRecord, b models.BusinessRecord, matched bool) models.EnrichedRecord {
	r := models.EnrichedRecord{
		MarketingRecord: m,
		Business:        b,
		Matched:         matched,
		CTR:             ratio(m.Clicks, m.Impressions) * 100,
		CPC:             ratio(m.Spend, m.Clicks),
		CPA:             ratio(m.Spend, b.NewOrders),
		ROAS:            ratio(m.AttributedRevenue, m.Spend),
	}
	sanitize(&r)
	return r
}

// ratio divides by den, using 1 when den is exactly zero. A zero-activity
// row therefore reports its numerator instead of an undefined value. NaN
// denominators pass through and are zeroed by sanitize.
func ratio(num, den float64) float64 {
	if den == 0 {
		den = 1
	}
	return num / den
}

func sanitize(r *models.EnrichedRecord) {
	for _, v := range []*float64{
		&r.Impressions, &r.Clicks, &r.Spend, &r.AttributedRevenue,
		&r.Business.Orders, &r.Business.NewOrders, &r.Business.NewCustomers,
		&r.Business.TotalRevenue, &r.Business.GrossProfit, &r.Business.COGS,
		&r.CTR, &r.CPC, &r.CPA, &r.ROAS,
	} {
		*v = finite(*v)
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
