package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
)

const ctxCheckEvery = 1024

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// frame is a CSV source read as all-string columns with its header names
// indexed for lookup.
type frame struct {
	path  string
	df    dataframe.DataFrame
	names map[string]string
}

func readFrame(path string) (*frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.SourceIO(err, path)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		header, ok := headerOnly(data)
		if !ok {
			return nil, errors.Wrap(df.Err, errors.CodeParse, fmt.Sprintf("cannot parse CSV %q", path))
		}
		df = emptyFrame(header)
		if df.Err != nil {
			return nil, errors.Wrap(df.Err, errors.CodeParse, fmt.Sprintf("cannot parse CSV %q", path))
		}
	}

	names := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		names[strings.TrimSpace(name)] = name
	}
	return &frame{path: path, df: df, names: names}, nil
}

// headerOnly reports whether data holds a header row and nothing else.
// gota refuses such input, but a channel with no rows in the period is
// valid and still has to pass the schema check.
func headerOnly(data []byte) ([]string, bool) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil || len(header) == 0 {
		return nil, false
	}
	if _, err := r.Read(); err != io.EOF {
		return nil, false
	}
	return header, true
}

func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// require checks every column at once so a broken export reports all of
// its missing headers in a single error.
func (f *frame) require(columns []string) error {
	var missing []string
	for _, col := range columns {
		if _, ok := f.names[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.SourceSchema(f.path, missing)
	}
	return nil
}

func (f *frame) has(col string) bool {
	_, ok := f.names[col]
	return ok
}

func (f *frame) text(col string) []string {
	name, ok := f.names[col]
	if !ok {
		return nil
	}
	return f.df.Col(name).Records()
}

// numbers converts a column to float64. Missing cells become NaN and are
// zeroed only after metric derivation. An absent optional column yields
// zeros.
func (f *frame) numbers(col string) ([]float64, error) {
	if !f.has(col) {
		return make([]float64, f.df.Nrow()), nil
	}
	cells := f.text(col)
	out := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := parseNumber(cell)
		if err != nil {
			return nil, errors.SourceParse(err, f.path, i+2, col)
		}
		out[i] = v
	}
	return out, nil
}

func (f *frame) dates() ([]time.Time, error) {
	cells := f.text(ColDate)
	out := make([]time.Time, len(cells))
	for i, cell := range cells {
		d, err := ParseDate(cell)
		if err != nil {
			return nil, errors.SourceParse(err, f.path, i+2, ColDate)
		}
		out[i] = d
	}
	return out, nil
}

// columns converts the named numeric columns in order, stopping at the
// first bad cell.
func (f *frame) columns(cols ...string) (map[string][]float64, error) {
	values := make(map[string][]float64, len(cols))
	for _, col := range cols {
		v, err := f.numbers(col)
		if err != nil {
			return nil, err
		}
		values[col] = v
	}
	return values, nil
}

func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(s)] {
		return math.NaN(), nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// LoadMarketing reads one channel export and stamps every row with the
// source's channel.
func LoadMarketing(ctx context.Context, src MarketingSource) ([]models.MarketingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !src.Channel.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown channel %q for %s", src.Channel, src.Path))
	}

	f, err := readFrame(src.Path)
	if err != nil {
		return nil, err
	}
	if err := f.require(marketingColumns); err != nil {
		return nil, err
	}

	dates, err := f.dates()
	if err != nil {
		return nil, err
	}
	values, err := f.columns(ColImpression, ColClicks, ColSpend, ColAttributedRevenue)
	if err != nil {
		return nil, err
	}

	tactics, states, campaigns := f.text(ColTactic), f.text(ColState), f.text(ColCampaign)
	records := make([]models.MarketingRecord, len(dates))
	for i, d := range dates {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		records[i] = models.MarketingRecord{
			Date:              d,
			Channel:           src.Channel,
			Tactic:            strings.TrimSpace(tactics[i]),
			State:             strings.TrimSpace(states[i]),
			Campaign:          strings.TrimSpace(campaigns[i]),
			Impressions:       values[ColImpression][i],
			Clicks:            values[ColClicks][i],
			Spend:             values[ColSpend][i],
			AttributedRevenue: values[ColAttributedRevenue][i],
		}
	}
	return records, nil
}

// LoadBusiness reads the daily business totals. Dates must be unique: a
// repeated day would fan out the join, so it is rejected here.
func LoadBusiness(ctx context.Context, path string) ([]models.BusinessRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := readFrame(path)
	if err != nil {
		return nil, err
	}
	if err := f.require(businessColumns); err != nil {
		return nil, err
	}

	dates, err := f.dates()
	if err != nil {
		return nil, err
	}
	values, err := f.columns(ColOrders, ColNewOrders, ColNewCustomers, ColTotalRevenue, ColGrossProfit, ColCOGS)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]int, len(dates))
	records := make([]models.BusinessRecord, len(dates))
	for i, d := range dates {
		if first, dup := seen[d]; dup {
			return nil, errors.New(errors.CodeDuplicateKey,
				fmt.Sprintf("%s: date %s appears on rows %d and %d", path, d.Format("2006-01-02"), first+2, i+2))
		}
		seen[d] = i
		records[i] = models.BusinessRecord{
			Date:         d,
			Orders:       values[ColOrders][i],
			NewOrders:    values[ColNewOrders][i],
			NewCustomers: values[ColNewCustomers][i],
			TotalRevenue: values[ColTotalRevenue][i],
			GrossProfit:  values[ColGrossProfit][i],
			COGS:         values[ColCOGS][i],
		}
	}
	return records, nil
}
