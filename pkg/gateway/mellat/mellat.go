// Package mellat drives the Behpardakht Mellat SOAP gateway.
package mellat

import (
	"context"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/soap"
	"go.uber.org/zap"
)

const (
	ServerURL = "https://bpm.shaparak.ir/pgwchannel/services/pgw"
	GateURL   = "https://bpm.shaparak.ir/pgwchannel/startpay.mellat"

	namespace = "http://interfaces.core.sw.bps.com/"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg    gateway.MellatConfig
	client *soap.Client
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Mellat
	if p.cfg.TerminalID == 0 {
		return gateway.NewConfigError(gateway.Mellat, "terminal-id", nil)
	}
	err := gateway.RequireConfig(gateway.Mellat,
		"username", p.cfg.Username,
		"password", p.cfg.Password,
		"callback-url", p.cfg.CallbackURL,
	)
	if err != nil {
		return err
	}

	p.client = soap.NewClient(p.HTTP(), gateway.Endpoint(p.cfg.ServerURL, ServerURL), namespace)
	return nil
}

func (p *Port) credentials() []soap.Param {
	return []soap.Param{
		soap.P("terminalId", strconv.FormatInt(p.cfg.TerminalID, 10)),
		soap.P("userName", p.cfg.Username),
		soap.P("userPassword", p.cfg.Password),
	}
}

func (p *Port) Ready(ctx context.Context, payment gateway.Payment) (*gateway.Transaction, error) {
	tx, err := p.NewTransaction(ctx, payment.Amount)
	if err != nil {
		return nil, err
	}

	callback, err := p.CallbackURL(tx, payment.CallbackURL, p.cfg.CallbackURL)
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeInternal, Message(CodeInternal)).WithCause(err))
	}

	now := p.Now()
	params := append(p.credentials(),
		soap.P("orderId", strconv.FormatInt(tx.ID, 10)),
		soap.P("amount", strconv.FormatInt(tx.Amount, 10)),
		soap.P("localDate", now.Format("20060102")),
		soap.P("localTime", now.Format("150405")),
		soap.P("additionalData", payment.AdditionalData),
		soap.P("callBackUrl", callback),
		soap.P("payerId", "0"),
	)

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.client.Call(callCtx, "bpPayRequest", params...)
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	code, refID, _ := strings.Cut(strings.TrimSpace(res.Result("bpPayRequest")), ",")
	if code != CodeSuccess || refID == "" {
		if code == "" || code == CodeSuccess {
			code = CodeInvalidResponse
		}
		return nil, p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}

	if err := p.TransactionSetRefID(ctx, tx, refID); err != nil {
		return nil, err
	}
	return tx, nil
}

func (p *Port) Redirect(_ context.Context, tx *gateway.Transaction) (*gateway.Redirect, error) {
	if err := p.RequireRefID(tx); err != nil {
		return nil, err
	}
	return gateway.NewPostRedirect(gateway.Endpoint(p.cfg.GateURL, GateURL),
		gateway.Field{Name: "RefId", Value: tx.RefIDValue()},
	), nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "RefId", "ResCode"); err != nil {
		return err
	}
	if cb.Get("RefId") != tx.RefIDValue() {
		return p.InvalidCallback("RefId does not match transaction")
	}
	if cb.Has("SaleOrderId") && cb.Get("SaleOrderId") != strconv.FormatInt(tx.ID, 10) {
		return p.InvalidCallback("SaleOrderId does not match transaction")
	}

	if code := cb.Get("ResCode"); code != CodeSuccess {
		return p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}

	saleReference := cb.Get("SaleReferenceId")
	if saleReference == "" {
		return p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	order := []soap.Param{
		soap.P("orderId", strconv.FormatInt(tx.ID, 10)),
		soap.P("saleOrderId", strconv.FormatInt(tx.ID, 10)),
		soap.P("saleReferenceId", saleReference),
	}

	if code, err := p.call(callCtx, "bpVerifyRequest", order); err != nil || code != CodeSuccess {
		return p.Fail(ctx, tx, p.callError(code, err))
	}

	code, err := p.call(callCtx, "bpSettleRequest", order)
	if err != nil || (code != CodeSuccess && code != CodeAlreadySettled) {
		p.reverse(callCtx, tx, order)
		return p.Fail(ctx, tx, p.callError(code, err))
	}

	meta := map[string]any{"sale_reference_id": saleReference}
	if pan := cb.Get("CardHolderPan"); pan != "" {
		meta["card_number"] = pan
	}

	if err := p.TransactionSucceed(ctx, tx, saleReference, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

func (p *Port) call(ctx context.Context, operation string, order []soap.Param) (string, error) {
	res, err := p.client.Call(ctx, operation, append(p.credentials(), order...)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Result(operation)), nil
}

func (p *Port) callError(code string, err error) *gateway.GatewayError {
	if err != nil {
		return p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err)
	}
	if code == "" {
		code = CodeInvalidResponse
	}
	return p.NewError(code, Message(code))
}

// reverse asks the bank to refund a verified but unsettled payment.
func (p *Port) reverse(ctx context.Context, tx *gateway.Transaction, order []soap.Param) {
	code, err := p.call(ctx, "bpReversalRequest", order)
	if err != nil || code != CodeSuccess {
		p.Logger().Error("reversal request failed",
			zap.Int64("transactionID", tx.ID), zap.String("code", code), zap.Error(err))
	}
}
