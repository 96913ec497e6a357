package verification

import (
	"fmt"
	"time"

	"github.com/JaimeStill/provenance/internal/batches"
	"github.com/JaimeStill/provenance/internal/units"
)

// Policy holds the configured suspicious-scan thresholds. The exact values
// are deployment policy, not code.
type Policy struct {
	ScanThreshold int
	ScanWindow    time.Duration
}

// Classify determines the authenticity classification for a resolved unit.
// recentScans is the number of prior verification events for this code
// within the policy window. Pure: same inputs, same classification.
//
// Precedence: a broken anchor is counterfeit regardless of auxiliary
// signals; auxiliary inconsistencies on an anchored unit are suspicious;
// an anchored unit with no inconsistent signals is authentic.
func Classify(unit *units.UnitIdentifier, uploadStatus string, recentScans int, policy Policy, now time.Time) Classification {
	if unit.BlockchainTx == "" {
		return Classification{
			Result: ResultCounterfeit,
			Reason: "unit carries no anchoring transaction",
		}
	}
	if uploadStatus != batches.StatusCompleted {
		return Classification{
			Result: ResultCounterfeit,
			Reason: fmt.Sprintf("parent batch is not anchored (status %s)", uploadStatus),
		}
	}

	if !unit.ExpiryDate.IsZero() && unit.ExpiryDate.Before(now) {
		return Classification{
			Result: ResultSuspicious,
			Reason: fmt.Sprintf("expired on %s", unit.ExpiryDate.Format("2006-01-02")),
		}
	}
	if policy.ScanThreshold > 0 && recentScans >= policy.ScanThreshold {
		return Classification{
			Result: ResultSuspicious,
			Reason: fmt.Sprintf(
				"scanned %d times within %s", recentScans, policy.ScanWindow,
			),
		}
	}

	return Classification{Result: ResultAuthentic}
}
