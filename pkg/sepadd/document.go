// =============================================================================
// SEPA Direct Debit Builder - Document Engine
// =============================================================================
//
// A Document assembles one pain.008 customer direct debit initiation:
//
//   1. New validates the creditor Config and writes the group header
//   2. AddPayment validates each payment and places it in a block
//   3. Save writes block and header totals and serializes the tree
//
// In batched mode payments with the same sequence type and collection date
// share one PmtInf block. Batched blocks are attached to the tree the first
// time the document is saved; later saves only rewrite their totals.
//
// A Document is not safe for concurrent use.
//
// =============================================================================

package sepadd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/ginjaninja78/sepa-direct-debit/internal/validation"
	"github.com/ginjaninja78/sepa-direct-debit/internal/xmlwriter"
	"github.com/ginjaninja78/sepa-direct-debit/internal/xsd"
)

// Document is a pain.008 document under construction.
type Document struct {
	cfg     Config
	version int

	logger *slog.Logger
	now    func() time.Time
	random func() uint64

	schemas   xsd.Validator
	schemaDir string

	validator *validation.Validator

	root   *xmlwriter.Element
	initn  *xmlwriter.Element
	header groupHeader
	msgID  string

	blocks registry
	total  int64
}

// New validates cfg and creates a document holding only the group header.
// The returned error is a *ConfigError naming the first failing field.
func New(cfg Config, opts ...Option) (*Document, error) {
	d := &Document{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		random: defaultRandom,
		blocks: newRegistry(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.validator = validation.NewValidator(validation.Options{
		SkipIdentifiers: cfg.DisableValidation,
		Now:             d.now,
	})

	if err := validation.Validate(cfg.fields(), configRequired, configChecks(d.validator)); err != nil {
		return nil, configError(err)
	}

	d.version = cfg.version()

	now := d.now()
	d.msgID = makeMsgID(now, d.random)
	d.root, d.initn = documentRoot(d.version)
	d.header = newGroupHeader(d.msgID, now.Format(creDtTmLayout), cfg.Name)
	d.initn.Append(d.header.node)

	d.logger.Debug("document created",
		"msg_id", d.msgID,
		"version", d.version,
		"batch", cfg.Batch,
	)

	return d, nil
}

// MessageID returns the group header message id.
func (d *Document) MessageID() string {
	return d.msgID
}

// Version returns the effective schema version (2 or 3).
func (d *Document) Version() int {
	return d.version
}

// =============================================================================
// PAYMENTS
// =============================================================================

// AddPayment validates p and adds it to the document. It returns the
// end-to-end id the transaction was written with. A rejected payment leaves
// the document unchanged.
func (d *Document) AddPayment(p Payment) (string, error) {
	if err := validation.Validate(p.fields(), paymentRequired, paymentChecks(d.validator)); err != nil {
		return "", paymentError(err)
	}

	amount, err := parseMinorUnits(p.Amount)
	if err != nil {
		return "", &PaymentError{Field: "amount", Reason: "does not validate: " + err.Error()}
	}

	total, err := addMinorUnits(d.total, amount)
	if err != nil {
		return "", &PaymentError{Field: "amount", Reason: "does not validate: " + err.Error()}
	}

	var b *block
	if d.cfg.Batch {
		b, err = d.batchFor(p.Type, p.CollectionDate)
		if err != nil {
			return "", err
		}
	} else {
		b = d.newBlock(batchKey{seqType: p.Type, collectionDate: p.CollectionDate}, false)
	}

	if err := b.add(amount); err != nil {
		return "", &PaymentError{Field: "amount", Reason: "does not validate: " + err.Error()}
	}
	d.total = total

	endToEndID := p.EndToEndID
	if endToEndID == "" {
		endToEndID = makeID(d.cfg.Name, d.random)
	}

	b.info.node.Append(directDebitTransaction(p, endToEndID, amount, d.cfg.Currency, d.version))

	if !d.cfg.Batch {
		b.flush()
		b.attached = true
		d.initn.Append(b.info.node)
		d.blocks.register(b, false)
	}

	return endToEndID, nil
}

// IsEmpty reports whether no payment information block exists yet.
func (d *Document) IsEmpty() bool {
	return d.blocks.len() == 0
}

// =============================================================================
// FINALIZATION
// =============================================================================

// Save writes the block totals, attaches batches that are not yet part of
// the tree, recomputes the header totals from the tree and returns the
// pretty-printed document. Saving again without new payments produces the
// same totals.
func (d *Document) Save() ([]byte, error) {
	if err := d.finalize(); err != nil {
		return nil, err
	}

	out, err := xmlwriter.Generate(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document %s: %w", d.msgID, err)
	}

	return out, nil
}

func (d *Document) finalize() error {
	attached := 0
	for _, b := range d.blocks.blocks {
		b.flush()
		if !b.attached {
			d.initn.Append(b.info.node)
			b.attached = true
			attached++
		}
	}

	count, sum, err := treeTotals(d.root)
	if err != nil {
		return fmt.Errorf("failed to finalize document %s: %w", d.msgID, err)
	}

	d.header.nbOfTxs.Value = strconv.Itoa(count)
	d.header.ctrlSum.Value = IntToDecimal(sum)

	d.logger.Debug("document finalized",
		"msg_id", d.msgID,
		"blocks", d.blocks.len(),
		"attached", attached,
		"transactions", count,
		"control_sum", d.header.ctrlSum.Value,
	)

	return nil
}

// treeTotals counts every DrctDbtTxInf and sums every InstdAmt in the tree.
func treeTotals(root *xmlwriter.Element) (int, int64, error) {
	count := len(root.FindAll("DrctDbtTxInf"))

	var sum int64
	for _, amount := range root.FindAll("InstdAmt") {
		minor, err := DecimalToInt(amount.Value)
		if err != nil {
			return 0, 0, err
		}
		if sum, err = addMinorUnits(sum, minor); err != nil {
			return 0, 0, err
		}
	}

	return count, sum, nil
}

// =============================================================================
// SCHEMA VALIDATION
// =============================================================================

// SchemaPath returns the XSD path used by Validate.
func (d *Document) SchemaPath() string {
	return filepath.Join(d.schemaDir, SchemaFile(d.version))
}

// Validate checks a serialized document against the XSD matching the
// configured version. A document that does not conform is reported in the
// Result; an error means the validator itself failed.
func (d *Document) Validate(ctx context.Context, document []byte) (xsd.Result, error) {
	if d.schemas == nil {
		return xsd.Result{}, ErrNoSchemaValidator
	}

	result, err := d.schemas.Validate(ctx, document, d.SchemaPath())
	if err != nil {
		return xsd.Result{}, fmt.Errorf("failed to validate document %s: %w", d.msgID, err)
	}

	return result, nil
}

// =============================================================================
// CUSTOM NODES
// =============================================================================

// AddCustomNode appends one element under the single node selected by
// parentPath. value and attrs may be empty. The path is evaluated against
// the attached tree, so batched blocks become addressable after the first
// Save.
func (d *Document) AddCustomNode(parentPath, name, value string, attrs map[string]string) error {
	if name == "*" || !xmlwriter.ValidName(name) {
		return fmt.Errorf("invalid element name %q", name)
	}
	if reason := validation.ValidateText(value); reason != "" {
		return fmt.Errorf("invalid value for %s: %s", name, reason)
	}

	matches, err := xmlwriter.Select(d.root, parentPath)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	switch len(matches) {
	case 0:
		return fmt.Errorf("%w: %s", ErrNodeNotFound, parentPath)
	case 1:
	default:
		return fmt.Errorf("%w: %s matches %d nodes", ErrAmbiguousPath, parentPath, len(matches))
	}

	node := xmlwriter.TextElement(name, value)

	names := lo.Keys(attrs)
	slices.Sort(names)
	for _, attr := range names {
		if attr == "*" || !xmlwriter.ValidName(attr) {
			return fmt.Errorf("invalid attribute name %q", attr)
		}
		if reason := validation.ValidateText(attrs[attr]); reason != "" {
			return fmt.Errorf("invalid value for attribute %s: %s", attr, reason)
		}
		node.SetAttr(attr, attrs[attr])
	}

	matches[0].Append(node)
	return nil
}
