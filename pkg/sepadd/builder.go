package sepadd

import (
	"strconv"

	"github.com/ginjaninja78/sepa-direct-debit/internal/xmlwriter"
)

// =============================================================================
// ELEMENT BUILDERS
// =============================================================================
//
// Each builder returns a detached subtree. Callers compose them into parents
// and keep pointers to the few nodes that are rewritten at finalization.
//
// =============================================================================

var (
	el   = xmlwriter.NewElement
	text = xmlwriter.TextElement
)

const notProvided = "NOTPROVIDED"

// documentRoot builds Document/CstmrDrctDbtInitn and returns both.
func documentRoot(version int) (root, initn *xmlwriter.Element) {
	initn = el("CstmrDrctDbtInitn")
	root = el("Document", initn).
		SetAttr("xmlns", Namespace(version)).
		SetAttr("xmlns:xsi", xsiNamespace)
	return root, initn
}

// groupHeader builds GrpHdr. The returned NbOfTxs and CtrlSum nodes hold
// placeholders until the document is saved.
type groupHeader struct {
	node    *xmlwriter.Element
	nbOfTxs *xmlwriter.Element
	ctrlSum *xmlwriter.Element
}

func newGroupHeader(msgID, created, initiator string) groupHeader {
	h := groupHeader{
		nbOfTxs: text("NbOfTxs", "0"),
		ctrlSum: text("CtrlSum", IntToDecimal(0)),
	}
	h.node = el("GrpHdr",
		text("MsgId", msgID),
		text("CreDtTm", created),
		h.nbOfTxs,
		h.ctrlSum,
		el("InitgPty", text("Nm", initiator)),
	)
	return h
}

// financialInstitution builds FinInstnId with the version specific BIC
// element, or the Othr/Id NOTPROVIDED fallback.
func financialInstitution(bic string, version int) *xmlwriter.Element {
	if bic == "" {
		return el("FinInstnId", el("Othr", text("Id", notProvided)))
	}
	return el("FinInstnId", text(bicElementName(version), bic))
}

// paymentInfo is a PmtInf block scaffold without transactions.
type paymentInfo struct {
	node    *xmlwriter.Element
	nbOfTxs *xmlwriter.Element
	ctrlSum *xmlwriter.Element
}

type paymentInfoParams struct {
	id             string
	batchBooking   bool
	seqType        string
	collectionDate string
	cfg            Config
}

func newPaymentInfo(p paymentInfoParams) paymentInfo {
	info := paymentInfo{
		nbOfTxs: text("NbOfTxs", "0"),
		ctrlSum: text("CtrlSum", IntToDecimal(0)),
	}

	info.node = el("PmtInf",
		text("PmtInfId", p.id),
		text("PmtMtd", "DD"),
		text("BtchBookg", strconv.FormatBool(p.batchBooking)),
		info.nbOfTxs,
		info.ctrlSum,
		el("PmtTpInf",
			el("SvcLvl", text("Cd", "SEPA")),
			el("LclInstrm", text("Cd", "CORE")),
			text("SeqTp", p.seqType),
		),
		text("ReqdColltnDt", p.collectionDate),
		el("Cdtr", text("Nm", p.cfg.Name)),
		el("CdtrAcct", el("Id", text("IBAN", p.cfg.IBAN))),
		el("CdtrAgt", financialInstitution(p.cfg.BIC, p.cfg.version())),
		text("ChrgBr", "SLEV"),
		creditorSchemeID(p.cfg.Name, p.cfg.CreditorID),
	)

	return info
}

func creditorSchemeID(name, creditorID string) *xmlwriter.Element {
	return el("CdtrSchmeId",
		text("Nm", name),
		el("Id",
			el("PrvtId",
				el("Othr",
					text("Id", creditorID),
					el("SchmeNm", text("Prtry", "SEPA")),
				),
			),
		),
	)
}

// directDebitTransaction builds DrctDbtTxInf for an accepted payment.
func directDebitTransaction(p Payment, endToEndID string, amount int64, currency string, version int) *xmlwriter.Element {
	return el("DrctDbtTxInf",
		el("PmtId", text("EndToEndId", endToEndID)),
		text("InstdAmt", IntToDecimal(amount)).SetAttr("Ccy", currency),
		el("DrctDbtTx",
			el("MndtRltdInf",
				text("MndtId", p.MandateID),
				text("DtOfSgntr", p.MandateDate),
			),
		),
		el("DbtrAgt", financialInstitution(p.BIC, version)),
		el("Dbtr", text("Nm", p.Name)),
		el("DbtrAcct", el("Id", text("IBAN", p.IBAN))),
		el("RmtInf", text("Ustrd", p.Description)),
	)
}
