package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitializeMetricsPrePopulatesLookupOutcomes(t *testing.T) {
	InitializeMetrics()

	// 4 operations x 3 outcomes. Every outcome a lookup can emit,
	// including error, must exist from the first scrape so rate queries
	// see the series immediately.
	if got := testutil.CollectAndCount(CollectionLookupsTotal); got != 12 {
		t.Errorf("CollectionLookupsTotal series = %d, want 12", got)
	}
}
