package ledger

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestAssetRegistry_MintAndHolder(t *testing.T) {
	r := NewAssetRegistry("APES")

	assert.Nil(t, r.Mint("alice", "21"))
	holder, err := r.CurrentHolder("21")
	assert.Nil(t, err)
	check.Equal(t, "alice", holder)

	err = r.Mint("bob", "21")
	check.True(t, errors.Is(err, ErrAssetExists))

	_, err = r.CurrentHolder("404")
	check.True(t, errors.Is(err, ErrUnknownAsset))
}

func TestAssetRegistry_ApprovalAuthorizes(t *testing.T) {
	r := NewAssetRegistry("APES")
	assert.Nil(t, r.Mint("alice", "21"))

	// The holder is always authorized over its own asset.
	check.True(t, r.IsAuthorized("alice", "alice", "21"))
	check.False(t, r.IsAuthorized("alice", "factory", "21"))

	assert.Nil(t, r.Approve("alice", "factory", "21"))
	check.True(t, r.IsAuthorized("alice", "factory", "21"))

	// Only the holder may approve.
	err := r.Approve("bob", "mallory", "21")
	check.True(t, errors.Is(err, ErrNotAuthorized))
}

func TestAssetRegistry_TransferClearsApproval(t *testing.T) {
	r := NewAssetRegistry("APES")
	assert.Nil(t, r.Mint("alice", "21"))
	assert.Nil(t, r.Approve("alice", "factory", "21"))

	assert.Nil(t, r.TransferCustody("alice", "auction-1", "21"))
	holder, err := r.CurrentHolder("21")
	assert.Nil(t, err)
	check.Equal(t, "auction-1", holder)

	// The standing approval does not survive the transfer.
	check.False(t, r.IsAuthorized("auction-1", "factory", "21"))

	err = r.TransferCustody("alice", "bob", "21")
	check.True(t, errors.Is(err, ErrNotAuthorized))
}
