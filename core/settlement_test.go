package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestComputeSettlement_NoBids(t *testing.T) {
	settlement := ComputeSettlement(nil)

	check.False(t, settlement.HasWinner)
	check.Equal(t, "", settlement.Winner)
	check.True(t, settlement.Proceeds.IsZero())
}

func TestComputeSettlement_SingleBid(t *testing.T) {
	history := []BidRecord{
		{Bidder: "alice", Amount: dec("0.2")},
	}

	settlement := ComputeSettlement(history)

	check.True(t, settlement.HasWinner)
	check.Equal(t, "alice", settlement.Winner)
	check.True(t, settlement.Proceeds.Equal(dec("0.2")))
}

func TestComputeSettlement_LastBidWins(t *testing.T) {
	history := []BidRecord{
		{Bidder: "alice", Amount: dec("0.1")},
		{Bidder: "bob", Amount: dec("0.3")},
		{Bidder: "carol", Amount: dec("1.5")},
	}

	settlement := ComputeSettlement(history)

	check.True(t, settlement.HasWinner)
	check.Equal(t, "carol", settlement.Winner)
	check.True(t, settlement.Proceeds.Equal(dec("1.5")))
}
