package oracle

import (
	"encoding/binary"
	"fmt"

	"github.com/dariusjvc/solana-escrow-gambling/pkg/runtime"
	"github.com/dariusjvc/solana-escrow-gambling/pkg/types"
)

// FeedSymbol is the reference pair published by the feed account.
const FeedSymbol = "ETH/USDC"

// Decimals is the number of implied decimal places in normalized prices.
const Decimals = 8

// MaxSlotAge is how many slots old a published price may be before the
// reader treats the feed as stale.
const MaxSlotAge = 25

// feedMagic identifies a price feed account.
const feedMagic uint32 = 0xa1b2c3d4

// feedVersion is the supported feed layout version.
const feedVersion uint32 = 2

// Feed trading status values.
const (
	StatusUnknown uint8 = 0
	StatusTrading uint8 = 1
	StatusHalted  uint8 = 2
	StatusAuction uint8 = 3
)

// PriceFeedSize is the size of a serialized price feed account (37 bytes).
const PriceFeedSize = 37

// PriceFeed is the persisted state of a price feed account.
// Layout (37 bytes, little-endian, no padding):
//   - magic:        u32 [0:4]
//   - version:      u32 [4:8]
//   - status:       u8  [8]
//   - exponent:     i32 [9:13]
//   - price:        i64 [13:21]
//   - confidence:   u64 [21:29]
//   - publish_slot: u64 [29:37]
type PriceFeed struct {
	Status      uint8
	Exponent    int32
	Price       int64
	Confidence  uint64
	PublishSlot types.Slot
}

// DeserializePriceFeed deserializes a PriceFeed from account bytes.
func DeserializePriceFeed(data []byte) (*PriceFeed, error) {
	if len(data) < PriceFeedSize {
		return nil, fmt.Errorf("%w: feed data too short, expected %d bytes, got %d",
			ErrInvalidFeed, PriceFeedSize, len(data))
	}

	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != feedMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidFeed, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != feedVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFeed, version)
	}

	return &PriceFeed{
		Status:      data[8],
		Exponent:    int32(binary.LittleEndian.Uint32(data[9:13])),
		Price:       int64(binary.LittleEndian.Uint64(data[13:21])),
		Confidence:  binary.LittleEndian.Uint64(data[21:29]),
		PublishSlot: types.Slot(binary.LittleEndian.Uint64(data[29:37])),
	}, nil
}

// Serialize serializes the PriceFeed to account bytes.
func (f *PriceFeed) Serialize() []byte {
	data := make([]byte, PriceFeedSize)
	binary.LittleEndian.PutUint32(data[0:4], feedMagic)
	binary.LittleEndian.PutUint32(data[4:8], feedVersion)
	data[8] = f.Status
	binary.LittleEndian.PutUint32(data[9:13], uint32(f.Exponent))
	binary.LittleEndian.PutUint64(data[13:21], uint64(f.Price))
	binary.LittleEndian.PutUint64(data[21:29], f.Confidence)
	binary.LittleEndian.PutUint64(data[29:37], uint64(f.PublishSlot))
	return data
}

// NormalizedPrice returns the published price scaled to Decimals implied
// decimal places.
func (f *PriceFeed) NormalizedPrice() (uint64, error) {
	if f.Price <= 0 {
		return 0, fmt.Errorf("%w: published price %d", ErrInvalidPrice, f.Price)
	}

	price := uint64(f.Price)
	shift := int(f.Exponent) + Decimals
	switch {
	case shift > 0:
		for i := 0; i < shift; i++ {
			next := price * 10
			if next/10 != price {
				return 0, fmt.Errorf("%w: overflow scaling by 10^%d", ErrInvalidPrice, shift)
			}
			price = next
		}
	case shift < 0:
		for i := 0; i < -shift; i++ {
			price /= 10
		}
	}
	if price == 0 {
		return 0, fmt.Errorf("%w: price rounds to zero", ErrInvalidPrice)
	}
	return price, nil
}

// ReadPrice reads the current normalized price from a feed account view.
// It fails closed if the feed is malformed, not trading, or older than
// MaxSlotAge slots relative to currentSlot.
func ReadPrice(feedAccount *runtime.AccountInfo, currentSlot types.Slot) (uint64, error) {
	feed, err := DeserializePriceFeed(feedAccount.Data)
	if err != nil {
		return 0, err
	}

	if feed.Status != StatusTrading {
		return 0, fmt.Errorf("%w: feed status %d", ErrStaleFeed, feed.Status)
	}
	if currentSlot > feed.PublishSlot && currentSlot-feed.PublishSlot > MaxSlotAge {
		return 0, fmt.Errorf("%w: published at slot %d, current slot %d",
			ErrStaleFeed, feed.PublishSlot, currentSlot)
	}

	return feed.NormalizedPrice()
}
