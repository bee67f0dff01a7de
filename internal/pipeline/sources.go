// Package pipeline turns the per-channel marketing exports and the daily
// business totals into one flat, metric-enriched table.
package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
)

// Column names as they appear in the source headers.
const (
	ColDate              = "date"
	ColImpression        = "impression"
	ColClicks            = "clicks"
	ColSpend             = "spend"
	ColAttributedRevenue = "attributed revenue"
	ColTactic            = "tactic"
	ColState             = "state"
	ColCampaign          = "campaign"

	ColOrders       = "# of orders"
	ColNewOrders    = "# of new orders"
	ColNewCustomers = "new customers"
	ColTotalRevenue = "total revenue"
	ColGrossProfit  = "gross profit"
	ColCOGS         = "COGS"
)

var (
	marketingColumns = []string{
		ColDate, ColImpression, ColClicks, ColSpend, ColAttributedRevenue,
		ColTactic, ColState, ColCampaign,
	}
	businessColumns = []string{ColDate, ColNewOrders, ColNewCustomers}
)

// MarketingSource binds one export file to the channel it belongs to.
type MarketingSource struct {
	Channel models.Channel
	Path    string
}

type Sources struct {
	Marketing []MarketingSource
	Business  string
}

// DefaultSources returns the conventional file layout inside dir.
func DefaultSources(dir string) Sources {
	return Sources{
		Marketing: []MarketingSource{
			{Channel: models.ChannelFacebook, Path: filepath.Join(dir, "Facebook.csv")},
			{Channel: models.ChannelGoogle, Path: filepath.Join(dir, "Google.csv")},
			{Channel: models.ChannelTikTok, Path: filepath.Join(dir, "TikTok.csv")},
		},
		Business: filepath.Join(dir, "Business.csv"),
	}
}

func (s Sources) paths() []string {
	paths := make([]string, 0, len(s.Marketing)+1)
	for _, m := range s.Marketing {
		paths = append(paths, m.Path)
	}
	return append(paths, s.Business)
}

// Fingerprint identifies the current state of the input set by path, size
// and modification time of every file. It stats the files but does not
// read them.
func (s Sources) Fingerprint() (string, error) {
	h := sha256.New()
	for _, path := range s.paths() {
		info, err := os.Stat(path)
		if err != nil {
			return "", errors.SourceIO(err, path)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", path, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)[:16]), nil
}
