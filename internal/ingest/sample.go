package ingest

import (
	"math/rand"

	"github.com/dwsmith1983/forewarn/internal/metrics"
	"github.com/dwsmith1983/forewarn/pkg/types"
)

// Sample bounds a batch to at most cap records using a failure-biased
// policy: failure records are kept up to half the cap, the remainder is
// filled with normal records, and the combined sample is shuffled. Batches
// at or under the cap pass through untouched. The randomness source is
// injected so tests and repeated runs can pin a seed.
func Sample(records []types.Record, cap int, rnd *rand.Rand) []types.Record {
	if cap <= 0 || len(records) <= cap {
		return records
	}

	var failures, normal []types.Record
	for _, rec := range records {
		if rec.Failure {
			failures = append(failures, rec)
		} else {
			normal = append(normal, rec)
		}
	}

	failureQuota := cap / 2
	if len(failures) < failureQuota {
		failureQuota = len(failures)
	}
	normalQuota := cap - failureQuota
	if len(normal) < normalQuota {
		normalQuota = len(normal)
	}

	sampled := make([]types.Record, 0, failureQuota+normalQuota)
	sampled = append(sampled, pick(failures, failureQuota, rnd)...)
	sampled = append(sampled, pick(normal, normalQuota, rnd)...)

	rnd.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	metrics.RecordsSampled.Add(int64(len(sampled)))
	return sampled
}

// pick draws n records without replacement, leaving the input unmodified.
func pick(records []types.Record, n int, rnd *rand.Rand) []types.Record {
	if n >= len(records) {
		out := make([]types.Record, len(records))
		copy(out, records)
		return out
	}
	perm := rnd.Perm(len(records))
	out := make([]types.Record, 0, n)
	for _, i := range perm[:n] {
		out = append(out, records[i])
	}
	return out
}
