// Package parsian drives the Parsian (PEC) SOAP gateway.
package parsian

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/soap"
	"go.uber.org/zap"
)

const (
	SaleURL    = "https://pec.shaparak.ir/NewIPGServices/Sale/SaleService.asmx"
	ConfirmURL = "https://pec.shaparak.ir/NewIPGServices/Confirm/ConfirmService.asmx"
	GateURL    = "https://pec.shaparak.ir/NewIPG/"

	saleNamespace    = "https://pec.Shaparak.ir/NewIPGServices/Sale/SaleService"
	confirmNamespace = "https://pec.Shaparak.ir/NewIPGServices/Confirm/ConfirmService"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg     gateway.ParsianConfig
	sale    *soap.Client
	confirm *soap.Client
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Parsian
	if err := gateway.RequireConfig(gateway.Parsian, "pin", p.cfg.Pin, "callback-url", p.cfg.CallbackURL); err != nil {
		return err
	}

	p.sale = soap.NewClient(p.HTTP(), gateway.Endpoint(p.cfg.SaleURL, SaleURL), saleNamespace,
		soap.Qualified(), soap.WithActionPrefix(saleNamespace+"/"))
	p.confirm = soap.NewClient(p.HTTP(), gateway.Endpoint(p.cfg.ConfirmURL, ConfirmURL), confirmNamespace,
		soap.Qualified(), soap.WithActionPrefix(confirmNamespace+"/"))

	return nil
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

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.sale.Call(callCtx, "SalePaymentRequest", soap.Group("requestData",
		soap.P("LoginAccount", p.cfg.Pin),
		soap.P("Amount", strconv.FormatInt(tx.Amount, 10)),
		soap.P("OrderId", strconv.FormatInt(tx.ID, 10)),
		soap.P("CallBackUrl", callback),
		soap.P("AdditionalData", payment.AdditionalData),
	))
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	status := res.Text("Status")
	token := res.Text("Token")
	if status != CodeSuccess || token == "" || token == "0" {
		if status == "" || status == CodeSuccess {
			status = CodeInvalidResponse
		}
		return nil, p.Fail(ctx, tx, p.NewError(status, Message(status)))
	}

	if err := p.TransactionSetRefID(ctx, tx, token); err != nil {
		return nil, err
	}

	p.Logger().Info("sale payment request accepted", zap.Int64("transactionID", tx.ID))
	return tx, nil
}

func (p *Port) Redirect(_ context.Context, tx *gateway.Transaction) (*gateway.Redirect, error) {
	if err := p.RequireRefID(tx); err != nil {
		return nil, err
	}

	gate, err := url.Parse(gateway.Endpoint(p.cfg.GateURL, GateURL))
	if err != nil {
		return nil, err
	}
	q := gate.Query()
	q.Set("Token", tx.RefIDValue())
	gate.RawQuery = q.Encode()

	return gateway.NewGetRedirect(gate.String()), nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "Token", "status", "RRN"); err != nil {
		return err
	}

	token := cb.Get("Token")
	if token != tx.RefIDValue() {
		return p.InvalidCallback("token does not match transaction")
	}

	status := cb.Get("status")
	rrn := cb.Get("RRN")
	if status != CodeSuccess || rrn == "" || rrn == "0" {
		if status == CodeSuccess {
			status = CodeInvalidResponse
		}
		return p.Fail(ctx, tx, p.NewError(status, Message(status)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.confirm.Call(callCtx, "ConfirmPayment", soap.Group("requestData",
		soap.P("LoginAccount", p.cfg.Pin),
		soap.P("Token", token),
	))
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}
	if !res.Has("Status") {
		return p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)))
	}

	if status = res.Text("Status"); status != CodeSuccess {
		return p.Fail(ctx, tx, p.NewError(status, Message(status)))
	}

	meta := map[string]any{"rrn": rrn}
	if card := res.Text("CardNumberMasked"); card != "" {
		meta["card_number"] = card
	}

	if err := p.TransactionSucceed(ctx, tx, rrn, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}
