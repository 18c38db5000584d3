// Package saman drives the Saman (SEP) gateway: a form post to the bank and a
// SOAP verifyTransaction call on return.
package saman

import (
	"context"
	"strconv"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/soap"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	GateURL   = "https://sep.shaparak.ir/Payment.aspx"
	VerifyURL = "https://verify.sep.ir/Payments/ReferencePayment.asmx"

	namespace = "urn:Foo"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg    gateway.SamanConfig
	client *soap.Client
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Saman
	if err := gateway.RequireConfig(gateway.Saman, "merchant", p.cfg.Merchant, "callback-url", p.cfg.CallbackURL); err != nil {
		return err
	}

	p.client = soap.NewClient(p.HTTP(), gateway.Endpoint(p.cfg.VerifyURL, VerifyURL), namespace)
	return nil
}

// Ready records the transaction; its id is the ResNum posted to the bank.
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

	callback, err := gateway.MakeCallback(p.cfg.CallbackURL, tx.ID)
	if err != nil {
		return nil, err
	}

	return gateway.NewPostRedirect(gateway.Endpoint(p.cfg.GateURL, GateURL),
		gateway.Field{Name: "Amount", Value: strconv.FormatInt(tx.Amount, 10)},
		gateway.Field{Name: "MID", Value: p.cfg.Merchant},
		gateway.Field{Name: "ResNum", Value: tx.RefIDValue()},
		gateway.Field{Name: "RedirectURL", Value: callback},
	), nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "State", "ResNum"); err != nil {
		return err
	}
	if cb.Get("ResNum") != tx.RefIDValue() {
		return p.InvalidCallback("ResNum does not match transaction")
	}

	if state := cb.Get("State"); state != StateOK {
		return p.Fail(ctx, tx, p.NewError(state, Message(state)))
	}

	refNum := cb.Get("RefNum")
	if refNum == "" {
		return p.Fail(ctx, tx, p.NewError("-7", Message("-7")))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.client.Call(callCtx, "verifyTransaction",
		soap.P("String_1", refNum),
		soap.P("String_2", p.cfg.Merchant),
	)
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	paid, err := decimal.NewFromString(res.Result("verifyTransaction"))
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)).WithCause(err))
	}
	if paid.IsNegative() {
		code := paid.String()
		return p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}
	if !paid.Equal(decimal.NewFromInt(tx.Amount)) {
		p.reverse(callCtx, tx, refNum, paid)
		return p.Fail(ctx, tx, p.NewError(CodeAmountMismatch, Message(CodeAmountMismatch)))
	}

	meta := map[string]any{"ref_num": refNum}
	if pan := cb.Get("SecurePan"); pan != "" {
		meta["card_number"] = pan
	}
	if trace := cb.Get("TraceNo"); trace != "" {
		meta["trace_number"] = trace
	}

	if err := p.TransactionSucceed(ctx, tx, refNum, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

// reverse refunds a payment whose amount does not match. Needs the merchant password.
func (p *Port) reverse(ctx context.Context, tx *gateway.Transaction, refNum string, amount decimal.Decimal) {
	if p.cfg.Password == "" {
		p.Logger().Warn("cannot reverse saman payment without password", zap.Int64("transactionID", tx.ID))
		return
	}

	res, err := p.client.Call(ctx, "reverseTransaction",
		soap.P("String_1", refNum),
		soap.P("String_2", p.cfg.Merchant),
		soap.P("Username", p.cfg.Merchant),
		soap.P("Password", p.cfg.Password),
	)
	if err != nil {
		p.Logger().Error("saman reversal failed", zap.Int64("transactionID", tx.ID), zap.Error(err))
		return
	}
	p.Logger().Info("saman reversal requested",
		zap.Int64("transactionID", tx.ID),
		zap.String("amount", amount.String()),
		zap.String("result", res.Result("reverseTransaction")))
}
