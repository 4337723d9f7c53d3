package analytics

import (
	"sort"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// monthTotal accumulates one YYYY-MM bucket.
type monthTotal struct {
	sum   decimal.Decimal
	count int
}

// monthFold buckets amounts by the UTC month of their date.
type monthFold map[string]*monthTotal

func (m monthFold) add(date time.Time, amount decimal.Decimal) {
	key := domain.MonthKey(date)
	t, ok := m[key]
	if !ok {
		t = &monthTotal{}
		m[key] = t
	}
	t.sum = t.sum.Add(amount)
	t.count++
}

// buckets returns the months in ascending key order.
func (m monthFold) buckets() []GroupBucket {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupBucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, GroupBucket{Key: k, Total: domain.ToFloat(m[k].sum), Count: m[k].count})
	}
	return out
}
