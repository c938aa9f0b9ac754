package sepadd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_Empty(t *testing.T) {
	doc := newTestDocument(t, testConfig())

	summary := doc.Summary()
	assert.Equal(t, doc.MessageID(), summary.MessageID)
	assert.Equal(t, 0, summary.TotalTransactions)
	assert.Equal(t, "0", summary.TotalAmount)
	assert.Empty(t, summary.FirstCollectionDate)
	assert.Empty(t, summary.Batches)
}

func TestSummary_Batched(t *testing.T) {
	doc := newTestDocument(t, testConfig())

	payments := []struct {
		seqType string
		date    string
		amount  string
	}{
		{SeqFirst, "2024-02-01", "1000"},
		{SeqRecurring, "2024-01-15", "250"},
		{SeqFirst, "2024-02-01", "5"},
	}
	for _, p := range payments {
		payment := testPayment()
		payment.Type = p.seqType
		payment.CollectionDate = p.date
		payment.Amount = p.amount
		_, err := doc.AddPayment(payment)
		require.NoError(t, err)
	}

	summary := doc.Summary()
	assert.Equal(t, 3, summary.TotalTransactions)
	assert.Equal(t, "1255", summary.TotalAmount)
	assert.Equal(t, "2024-01-15", summary.FirstCollectionDate)

	require.Len(t, summary.Batches, 2)
	assert.Equal(t, BatchSummary{
		Type:           SeqFirst,
		CollectionDate: "2024-02-01",
		BatchID:        "Test-a1d0c6e83f02",
		Transactions:   2,
		Amount:         "1005",
	}, summary.Batches[0])
	assert.Equal(t, SeqRecurring, summary.Batches[1].Type)
	assert.Equal(t, "250", summary.Batches[1].Amount)
}

func TestSummary_DoesNotFinalize(t *testing.T) {
	doc := newTestDocument(t, testConfig())

	_, err := doc.AddPayment(testPayment())
	require.NoError(t, err)

	doc.Summary()
	assert.False(t, doc.blocks.blocks[0].attached)
	assert.Equal(t, "0", doc.header.nbOfTxs.Value)
}

func TestSummary_NonBatched(t *testing.T) {
	cfg := testConfig()
	cfg.Batch = false
	doc := newTestDocument(t, cfg)

	for _, date := range []string{"2024-03-01", "2024-02-20"} {
		payment := testPayment()
		payment.CollectionDate = date
		_, err := doc.AddPayment(payment)
		require.NoError(t, err)
	}

	summary := doc.Summary()
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, "2000", summary.TotalAmount)
	assert.Equal(t, "2024-02-20", summary.FirstCollectionDate)
	assert.Nil(t, summary.Batches)
}
