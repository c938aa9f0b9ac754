package sepadd

import (
	"strconv"

	"github.com/samber/lo"
)

// BatchSummary describes one batched payment information block.
type BatchSummary struct {
	Type           string `json:"type" yaml:"type"`
	CollectionDate string `json:"collection_date" yaml:"collection_date"`
	BatchID        string `json:"batch_id" yaml:"batch_id"`
	Transactions   int    `json:"transactions" yaml:"transactions"`

	// Amount is in minor units.
	Amount string `json:"amount" yaml:"amount"`
}

// Summary is a read-only report of a document's contents.
type Summary struct {
	MessageID         string `json:"message_id" yaml:"message_id"`
	TotalTransactions int    `json:"total_transactions" yaml:"total_transactions"`

	// TotalAmount is in minor units.
	TotalAmount string `json:"total_amount" yaml:"total_amount"`

	// FirstCollectionDate is the earliest requested collection date, or ""
	// for a document without payments.
	FirstCollectionDate string `json:"first_collection_date" yaml:"first_collection_date"`

	// Batches is only filled in batched mode, in creation order.
	Batches []BatchSummary `json:"batches,omitempty" yaml:"batches,omitempty"`
}

// Summary reports totals from the engine's own records. It does not
// finalize or otherwise change the document.
func (d *Document) Summary() Summary {
	blocks := d.blocks.blocks

	summary := Summary{
		MessageID:         d.msgID,
		TotalTransactions: lo.SumBy(blocks, func(b *block) int { return b.count }),
		TotalAmount:       strconv.FormatInt(lo.SumBy(blocks, func(b *block) int64 { return b.sum }), 10),
	}

	if len(blocks) > 0 {
		summary.FirstCollectionDate = lo.MinBy(blocks, func(a, b *block) bool {
			return a.key.collectionDate < b.key.collectionDate
		}).key.collectionDate
	}

	if d.cfg.Batch {
		summary.Batches = lo.Map(blocks, func(b *block, _ int) BatchSummary {
			return BatchSummary{
				Type:           b.key.seqType,
				CollectionDate: b.key.collectionDate,
				BatchID:        b.id(),
				Transactions:   b.count,
				Amount:         strconv.FormatInt(b.sum, 10),
			}
		})
	}

	return summary
}
