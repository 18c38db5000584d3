// Package pasargad drives the Pasargad (PEP) gateway: an RSA signed form post
// to the bank followed by XML check and verify calls.
package pasargad

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/httpclient"
	"github.com/Behyna/bankgateway/pkg/signer"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	errSign           = errors.New("SIGN_FAILED")
	errMissingElement = errors.New("MISSING_ELEMENT")
)

const (
	GateURL   = "https://pep.shaparak.ir/gateway.aspx"
	CheckURL  = "https://pep.shaparak.ir/CheckTransactionResult.aspx"
	VerifyURL = "https://pep.shaparak.ir/VerifyPayment.aspx"

	// ActionPurchase is the only action this driver issues.
	ActionPurchase = "1003"

	TimeLayout = "2006/01/02 15:04:05"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg    gateway.PasargadConfig
	signer *signer.Signer
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Pasargad
	err := gateway.RequireConfig(gateway.Pasargad,
		"merchant-id", p.cfg.MerchantID,
		"terminal-id", p.cfg.TerminalID,
		"certificate-path", p.cfg.CertificatePath,
		"callback-url", p.cfg.CallbackURL,
	)
	if err != nil {
		return err
	}

	s, err := signer.Load(p.cfg.CertificatePath)
	if err != nil {
		return gateway.NewConfigError(gateway.Pasargad, "certificate-path", err)
	}
	p.signer = s

	return nil
}

// Ready only records the transaction. Pasargad has no pre-authorization call,
// the invoice number doubles as the reference.
func (p *Port) Ready(ctx context.Context, payment gateway.Payment) (*gateway.Transaction, error) {
	tx, err := p.NewTransaction(ctx, payment.Amount)
	if err != nil {
		return nil, err
	}

	if err := p.TransactionSetRefID(ctx, tx, strconv.FormatInt(tx.ID, 10)); err != nil {
		return nil, err
	}
	return tx, nil
}

func (p *Port) Redirect(_ context.Context, tx *gateway.Transaction) (*gateway.Redirect, error) {
	if err := p.RequireRefID(tx); err != nil {
		return nil, err
	}

	invoice := tx.RefIDValue()
	invoiceDate := tx.CreatedAt.In(p.Config().Location()).Format(TimeLayout)
	amount := strconv.FormatInt(tx.Amount, 10)
	timestamp := p.Now().Format(TimeLayout)

	data := RedirectData(p.cfg.MerchantID, p.cfg.TerminalID, invoice, invoiceDate, amount, p.cfg.CallbackURL, timestamp)
	sign, err := p.signer.SignString(data)
	if err != nil {
		return nil, err
	}

	return gateway.NewPostRedirect(gateway.Endpoint(p.cfg.GateURL, GateURL),
		gateway.Field{Name: "merchantCode", Value: p.cfg.MerchantID},
		gateway.Field{Name: "terminalCode", Value: p.cfg.TerminalID},
		gateway.Field{Name: "invoiceNumber", Value: invoice},
		gateway.Field{Name: "invoiceDate", Value: invoiceDate},
		gateway.Field{Name: "amount", Value: amount},
		gateway.Field{Name: "redirectAddress", Value: p.cfg.CallbackURL},
		gateway.Field{Name: "action", Value: ActionPurchase},
		gateway.Field{Name: "timeStamp", Value: timestamp},
		gateway.Field{Name: "sign", Value: sign},
	), nil
}

// RedirectData is the string signed for the gateway form.
func RedirectData(merchant, terminal, invoice, invoiceDate, amount, callback, timestamp string) string {
	return canonical(merchant, terminal, invoice, invoiceDate, amount, callback, ActionPurchase, timestamp)
}

// VerifyData is the string signed for VerifyPayment.aspx.
func VerifyData(merchant, terminal, invoice, invoiceDate, amount, timestamp string) string {
	return canonical(merchant, terminal, invoice, invoiceDate, amount, timestamp)
}

func canonical(parts ...string) string {
	return "#" + strings.Join(parts, "#") + "#"
}

type checkResult struct {
	Result          string
	InvoiceNumber   string
	InvoiceDate     string
	Amount          string
	ReferenceNumber string
	TraceNumber     string
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "tref"); err != nil {
		return err
	}
	if cb.Has("iN") && cb.Get("iN") != tx.RefIDValue() {
		return p.InvalidCallback("invoice number does not match transaction")
	}

	tref := cb.Get("tref")

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	check, err := p.check(callCtx, tref)
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}
	if check.Result != "True" {
		return p.Fail(ctx, tx, p.NewError(CodeNotApproved, Message(CodeNotApproved)))
	}
	if check.InvoiceNumber != tx.RefIDValue() {
		return p.Fail(ctx, tx, p.NewError(CodeInvoiceMismatch, Message(CodeInvoiceMismatch)))
	}

	amount, err := decimal.NewFromString(check.Amount)
	if err != nil || !amount.Equal(decimal.NewFromInt(tx.Amount)) {
		return p.Fail(ctx, tx, p.NewError(CodeAmountMismatch, Message(CodeAmountMismatch)))
	}

	invoiceDate := cb.Get("iD")
	if invoiceDate == "" {
		invoiceDate = check.InvoiceDate
	}

	ok, message, err := p.verify(callCtx, tx, invoiceDate)
	if err != nil {
		gwErr := p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err)
		if errors.Is(err, errSign) {
			gwErr = p.NewError(CodeSign, Message(CodeSign))
		}
		return p.Fail(ctx, tx, gwErr)
	}
	if !ok {
		if message == "" {
			message = Message(CodeVerifyRejected)
		}
		return p.Fail(ctx, tx, p.NewError(CodeVerifyRejected, message))
	}

	meta := map[string]any{"reference_number": check.ReferenceNumber}
	if check.TraceNumber != "" {
		meta["trace_number"] = check.TraceNumber
	}

	if err := p.TransactionSucceed(ctx, tx, tref, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

func (p *Port) check(ctx context.Context, tref string) (*checkResult, error) {
	body, err := httpclient.PostForm(ctx, p.HTTP(), gateway.Endpoint(p.cfg.CheckURL, CheckURL),
		url.Values{"invoiceUID": {tref}}, nil)
	if err != nil {
		return nil, err
	}

	root, err := parseTree(body, "resultObj")
	if err != nil {
		return nil, err
	}

	return &checkResult{
		Result:          text(root, "result"),
		InvoiceNumber:   text(root, "invoiceNumber"),
		InvoiceDate:     text(root, "invoiceDate"),
		Amount:          text(root, "amount"),
		ReferenceNumber: text(root, "referenceNumber"),
		TraceNumber:     text(root, "traceNumber"),
	}, nil
}

func (p *Port) verify(ctx context.Context, tx *gateway.Transaction, invoiceDate string) (bool, string, error) {
	invoice := tx.RefIDValue()
	amount := strconv.FormatInt(tx.Amount, 10)
	timestamp := p.Now().Format(TimeLayout)

	sign, err := p.signer.SignString(VerifyData(p.cfg.MerchantID, p.cfg.TerminalID, invoice, invoiceDate, amount, timestamp))
	if err != nil {
		p.Logger().Error("failed to sign verify request", zap.Int64("transactionID", tx.ID), zap.Error(err))
		return false, "", errSign
	}

	body, err := httpclient.PostForm(ctx, p.HTTP(), gateway.Endpoint(p.cfg.VerifyURL, VerifyURL), url.Values{
		"MerchantCode":  {p.cfg.MerchantID},
		"TerminalCode":  {p.cfg.TerminalID},
		"InvoiceNumber": {invoice},
		"InvoiceDate":   {invoiceDate},
		"amount":        {amount},
		"TimeStamp":     {timestamp},
		"sign":          {sign},
	}, nil)
	if err != nil {
		return false, "", err
	}

	root, err := parseTree(body, "actionResult")
	if err != nil {
		return false, "", err
	}

	return text(root, "result") == "True", text(root, "resultMessage"), nil
}

func parseTree(body []byte, rootName string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}

	root := doc.FindElement("//" + rootName)
	if root == nil {
		return nil, fmt.Errorf("%w: %s", errMissingElement, rootName)
	}
	return root, nil
}

func text(el *etree.Element, name string) string {
	child := el.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
