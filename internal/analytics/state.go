// Package analytics holds the pure aggregations behind the dashboard views.
// Every function takes the data and the current time explicitly.
package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"ops-dashboard/internal/models"
)

// State is one consistent load of the dashboard collections. Version is the
// data version the load was taken at.
type State struct {
	Projects  []models.Project  `json:"projects"`
	Engineers []models.Engineer `json:"engineers"`
	Version   int64             `json:"version"`
}

// Query is everything an aggregation result depends on besides the data.
type Query struct {
	Filter      Filter
	Range       Range
	Granularity string
	Year        int

	// AsOf is set by aggregations that depend on today's date.
	AsOf models.Date
}

// Hash identifies the query in memo keys. Equal queries hash equally.
func (q Query) Hash() string {
	var b strings.Builder
	b.WriteString(q.Filter.key())
	b.WriteByte('|')
	b.WriteString(q.Range.Start.String())
	b.WriteByte('|')
	b.WriteString(q.Range.End.String())
	b.WriteByte('|')
	b.WriteString(q.Granularity)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(q.Year))
	b.WriteByte('|')
	b.WriteString(q.AsOf.String())
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// MemoKey is the cache key of an aggregation result for a data version.
func MemoKey(kind string, version int64, q Query) string {
	return fmt.Sprintf("analytics:%s:%d:%s", kind, version, q.Hash())
}

// round matches the browser's Math.round, which rounds halves up.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func percent(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return round(part / whole * 100)
}
