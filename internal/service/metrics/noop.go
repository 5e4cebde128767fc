package metrics

import "time"

// Noop is a Metrics implementation that discards everything. Used when the
// metrics endpoint is disabled and in tests.
type Noop struct{}

func (Noop) RecordFetchAttempt(provider, symbol string) {}
func (Noop) RecordProviderError(provider, kind string)  {}
func (Noop) RecordCacheHit(provider string)             {}
func (Noop) RecordCacheMiss(provider string)            {}
func (Noop) RecordSignal(trigger string)                {}
func (Noop) RecordScanDuration(d time.Duration)         {}
