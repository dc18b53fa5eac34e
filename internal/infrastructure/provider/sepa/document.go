package sepa

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payrail-server/internal/domain/payment"
)

// pain.001-shaped customer credit transfer initiation document.

// Document SEPA credit transfer initiation wire payload
type Document struct {
	XMLName xml.Name `xml:"Document"`
	Xmlns   string   `xml:"xmlns,attr"`
	Initn   Initiation
}

// Initiation top-level initiation block
type Initiation struct {
	XMLName xml.Name    `xml:"CstmrCdtTrfInitn"`
	Header  GroupHeader `xml:"GrpHdr"`
	Info    PaymentInfo `xml:"PmtInf"`
}

// GroupHeader message id, creation time, transaction count, control sum and
// originator identity
type GroupHeader struct {
	MessageID        string `xml:"MsgId"`
	CreationTime     string `xml:"CreDtTm"`
	TransactionCount int    `xml:"NbOfTxs"`
	ControlSum       string `xml:"CtrlSum"`
	InitiatingParty  Party  `xml:"InitgPty"`
}

// PaymentInfo batch-level payment block
type PaymentInfo struct {
	PaymentInfoID    string        `xml:"PmtInfId"`
	PaymentMethod    string        `xml:"PmtMtd"`
	TransactionCount int           `xml:"NbOfTxs"`
	ControlSum       string        `xml:"CtrlSum"`
	ExecutionDate    string        `xml:"ReqdExctnDt"`
	Debtor           Party         `xml:"Dbtr"`
	DebtorAccount    Account       `xml:"DbtrAcct"`
	CreditTransfers  []Transaction `xml:"CdtTrfTxInf"`
}

// Party a named party
type Party struct {
	Name string `xml:"Nm"`
}

// Account an IBAN account reference
type Account struct {
	IBAN string `xml:"Id>IBAN"`
}

// Transaction one credit transfer entry
type Transaction struct {
	EndToEndID      string  `xml:"PmtId>EndToEndId"`
	Amount          Amount  `xml:"Amt>InstdAmt"`
	Creditor        Party   `xml:"Cdtr"`
	CreditorAccount Account `xml:"CdtrAcct"`
	Remittance      string  `xml:"RmtInf>Ustrd"`
}

// Amount currency-scoped instructed amount
type Amount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

// BuiltDocument an immutable serialized batch payload. The bytes are
// captured at build time; mutating the source entries afterwards does not
// change them.
type BuiltDocument struct {
	MessageID     string
	ExecutionDate time.Time
	EntryCount    int
	ControlSum    decimal.Decimal
	Payload       []byte
}

// DocumentBuilder serializes validated payment entries into the bank rail's
// wire payload.
type DocumentBuilder struct {
	originatorName string
	originatorIBAN string
}

// NewDocumentBuilder creates a DocumentBuilder for the configured originator.
func NewDocumentBuilder(originatorName, originatorIBAN string) *DocumentBuilder {
	return &DocumentBuilder{
		originatorName: originatorName,
		originatorIBAN: originatorIBAN,
	}
}

// Build serializes the entries under the given message id. The control sum
// is the exact decimal sum of entry amounts; the requested execution date is
// the next non-weekend day after now.
func (b *DocumentBuilder) Build(messageID string, entries []*payment.Record, now time.Time) (*BuiltDocument, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("cannot build an empty document")
	}

	controlSum := decimal.Zero
	transactions := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		controlSum = controlSum.Add(e.Amount())
		transactions = append(transactions, Transaction{
			EndToEndID:      e.PaymentID(),
			Amount:          Amount{Currency: e.Currency(), Value: e.Amount().StringFixed(2)},
			Creditor:        Party{Name: e.RecipientName()},
			CreditorAccount: Account{IBAN: e.RecipientIBAN()},
			Remittance:      e.Description(),
		})
	}

	executionDate := NextExecutionDate(now)

	doc := Document{
		Xmlns: "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03",
		Initn: Initiation{
			Header: GroupHeader{
				MessageID:        messageID,
				CreationTime:     now.UTC().Format(time.RFC3339),
				TransactionCount: len(entries),
				ControlSum:       controlSum.StringFixed(2),
				InitiatingParty:  Party{Name: b.originatorName},
			},
			Info: PaymentInfo{
				PaymentInfoID:    messageID,
				PaymentMethod:    "TRF",
				TransactionCount: len(entries),
				ControlSum:       controlSum.StringFixed(2),
				ExecutionDate:    executionDate.Format("2006-01-02"),
				Debtor:           Party{Name: b.originatorName},
				DebtorAccount:    Account{IBAN: b.originatorIBAN},
				CreditTransfers:  transactions,
			},
		},
	}

	payload, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	return &BuiltDocument{
		MessageID:     messageID,
		ExecutionDate: executionDate,
		EntryCount:    len(entries),
		ControlSum:    controlSum,
		Payload:       payload,
	}, nil
}

// NextExecutionDate returns the next calendar day that is not a weekend day.
func NextExecutionDate(from time.Time) time.Time {
	d := from.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
