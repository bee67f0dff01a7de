package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/pipeline"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Filter selects rows by inclusive date range and by membership in the
// channel, tactic and state sets. A zero bound or an empty set does not
// restrict.
type Filter struct {
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end" validate:"omitempty,gtefield=Start"`
	Channels []models.Channel `json:"channels" validate:"dive,oneof=Facebook Google TikTok"`
	Tactics  []string         `json:"tactics" validate:"dive,required"`
	States   []string         `json:"states" validate:"dive,required"`
}

func (f Filter) Validate() error {
	if err := validate.Struct(f); err != nil {
		return errors.ValidationWrap(err, "invalid filter")
	}
	return nil
}

// ParseFilter reads a filter from query parameters. Set parameters may be
// repeated or comma separated: ?channel=Google&channel=TikTok or
// ?channel=Google,TikTok.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	for key, dst := range map[string]*time.Time{"start": &f.Start, "end": &f.End} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		d, err := pipeline.ParseDate(raw)
		if err != nil {
			return Filter{}, errors.ValidationWrap(err, "invalid "+key+" date")
		}
		*dst = d
	}

	for _, c := range splitValues(q["channel"]) {
		f.Channels = append(f.Channels, models.Channel(c))
	}
	f.Tactics = splitValues(q["tactic"])
	f.States = splitValues(q["state"])

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type matcher struct {
	start, end time.Time
	channels   map[models.Channel]bool
	tactics    map[string]bool
	states     map[string]bool
}

func (f Filter) matcher() matcher {
	return matcher{
		start:    f.Start,
		end:      f.End,
		channels: setOf(f.Channels),
		tactics:  setOf(f.Tactics),
		states:   setOf(f.States),
	}
}

func setOf[T comparable](values []T) map[T]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func (m matcher) match(r *models.EnrichedRecord) bool {
	if !m.start.IsZero() && r.Date.Before(m.start) {
		return false
	}
	if !m.end.IsZero() && r.Date.After(m.end) {
		return false
	}
	if m.channels != nil && !m.channels[r.Channel] {
		return false
	}
	if m.tactics != nil && !m.tactics[r.Tactic] {
		return false
	}
	if m.states != nil && !m.states[r.State] {
		return false
	}
	return true
}
