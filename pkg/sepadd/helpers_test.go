package sepadd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/xmlpath.v2"
)

var testNow = time.Date(2024, 1, 5, 14, 30, 45, 0, time.Local)

func testConfig() Config {
	return Config{
		Name:       "Test",
		IBAN:       "NL41BANK1234567890",
		Batch:      true,
		CreditorID: "00000",
		Currency:   "EUR",
	}
}

func testPayment() Payment {
	return Payment{
		Name:           "Test von Testenstein",
		IBAN:           "NL91ABNA0417164300",
		Amount:         "1000",
		Type:           SeqFirst,
		CollectionDate: "2024-01-10",
		MandateID:      "1234",
		MandateDate:    "2014-02-01",
		Description:    "Test",
	}
}

func newTestDocument(t *testing.T, cfg Config, opts ...Option) *Document {
	t.Helper()

	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithRandom(func() uint64 { return 42 }),
	}, opts...)

	doc, err := New(cfg, opts...)
	require.NoError(t, err)
	return doc
}

func mustSave(t *testing.T, doc *Document) *xmlpath.Node {
	t.Helper()

	out, err := doc.Save()
	require.NoError(t, err)

	node, err := xmlpath.Parse(bytes.NewReader(out))
	require.NoError(t, err)
	return node
}

func xpathString(t *testing.T, node *xmlpath.Node, path string) string {
	t.Helper()

	value, ok := xmlpath.MustCompile(path).String(node)
	require.True(t, ok, "no match for %s", path)
	return value
}

func xpathAll(node *xmlpath.Node, path string) []string {
	var values []string
	iter := xmlpath.MustCompile(path).Iter(node)
	for iter.Next() {
		values = append(values, iter.Node().String())
	}
	return values
}
