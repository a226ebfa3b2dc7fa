package core

import (
	"github.com/shopspring/decimal"
)

// ComputeSettlement determines the final distribution for an ended auction
// from its ordered bid history. The last record is the highest bid: bids
// are only ever appended in strictly increasing order, so no scan over the
// history is needed.
func ComputeSettlement(history []BidRecord) Settlement {
	if len(history) == 0 {
		return Settlement{
			HasWinner: false,
			Proceeds:  decimal.Zero,
		}
	}

	winning := history[len(history)-1]
	return Settlement{
		HasWinner: true,
		Winner:    winning.Bidder,
		Proceeds:  winning.Amount,
	}
}
