package sepadd

import (
	"strconv"

	"github.com/ginjaninja78/sepa-direct-debit/internal/validation"
)

// batchKey identifies a batched block.
type batchKey struct {
	seqType        string
	collectionDate string
}

func (k batchKey) String() string {
	return k.seqType + "::" + k.collectionDate
}

// block is a payment information block and its running totals. In batched
// mode a block collects every payment with the same key; otherwise each
// payment gets its own block.
type block struct {
	key  batchKey
	info paymentInfo

	count int
	sum   int64

	attached bool
}

func (b *block) id() string {
	return b.info.node.Child("PmtInfId").Value
}

// add records one accepted payment.
func (b *block) add(amount int64) error {
	sum, err := addMinorUnits(b.sum, amount)
	if err != nil {
		return err
	}
	b.sum = sum
	b.count++
	return nil
}

// flush writes the running totals into the block's nodes.
func (b *block) flush() {
	b.info.nbOfTxs.Value = strconv.Itoa(b.count)
	b.info.ctrlSum.Value = IntToDecimal(b.sum)
}

// registry owns every block of a document in creation order. Batched
// blocks are also indexed by key.
type registry struct {
	blocks []*block
	index  map[batchKey]int
}

func newRegistry() registry {
	return registry{index: make(map[batchKey]int)}
}

func (r *registry) lookup(key batchKey) (*block, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.blocks[i], true
}

// register appends a block. Keyed blocks become reachable through lookup.
func (r *registry) register(b *block, keyed bool) {
	r.blocks = append(r.blocks, b)
	if keyed {
		r.index[b.key] = len(r.blocks) - 1
	}
}

func (r *registry) len() int {
	return len(r.blocks)
}

// batchFor returns the batch for (seqType, collectionDate), creating and
// registering an empty one when needed.
func (d *Document) batchFor(seqType, collectionDate string) (*block, error) {
	if reason := validation.ValidateSequenceType(seqType); reason != "" {
		return nil, &PaymentError{Field: "type", Reason: "does not validate: " + reason}
	}
	if reason := validation.ValidateDate(collectionDate); reason != "" {
		return nil, &PaymentError{Field: "collection_date", Reason: "does not validate: " + reason}
	}

	key := batchKey{seqType: seqType, collectionDate: collectionDate}
	if b, ok := d.blocks.lookup(key); ok {
		return b, nil
	}

	b := d.newBlock(key, true)
	d.blocks.register(b, true)

	d.logger.Debug("batch created",
		"batch", key.String(),
		"batch_id", b.id(),
	)

	return b, nil
}

func (d *Document) newBlock(key batchKey, batchBooking bool) *block {
	return &block{
		key: key,
		info: newPaymentInfo(paymentInfoParams{
			id:             makeID(d.cfg.Name, d.random),
			batchBooking:   batchBooking,
			seqType:        key.seqType,
			collectionDate: key.collectionDate,
			cfg:            d.cfg,
		}),
	}
}
