package mempool

import "context"

const (
	// FeeThreshold is the exclusive lower bound, in satoshi, for a reportable fee.
	FeeThreshold uint64 = 50_000
	// ScanLimit caps how many listing entries are examined per poll.
	ScanLimit = 100
	// MaxCandidates caps the alert batch size.
	MaxCandidates = 5
)

// Transaction is a mempool entry selected for reporting.
type Transaction struct {
	ID   string
	Fee  uint64
	Size uint64
}

// Entry is a raw listing record in document order.
type Entry struct {
	ID   string
	Fee  uint64
	Size uint64
}

// Result summarises a single listing scan.
type Result struct {
	Candidates []Transaction
	Scanned    int
	Matched    int
}

// CandidateFetcher retrieves reportable transactions from the mempool.
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context) (Result, error)
}

// SelectCandidates keeps the first MaxCandidates entries whose fee exceeds
// FeeThreshold, in scan order. Only the first ScanLimit entries are examined.
func SelectCandidates(entries []Entry) Result {
	if len(entries) > ScanLimit {
		entries = entries[:ScanLimit]
	}

	res := Result{Scanned: len(entries)}
	for _, entry := range entries {
		if entry.Fee <= FeeThreshold {
			continue
		}
		res.Matched++
		if len(res.Candidates) < MaxCandidates {
			res.Candidates = append(res.Candidates, Transaction(entry))
		}
	}
	return res
}
