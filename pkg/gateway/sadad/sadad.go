// Package sadad drives the Sadad (Bank Melli) JSON gateway.
package sadad

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/httpclient"
)

const (
	RequestURL = "https://sadad.shaparak.ir/VPG/api/v0/Request/PaymentRequest"
	VerifyURL  = "https://sadad.shaparak.ir/VPG/api/v0/Advice/Verify"
	GateURL    = "https://sadad.shaparak.ir/VPG/Purchase"

	dateLayout = "01/02/2006 15:04:05"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg gateway.SadadConfig
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Sadad
	err := gateway.RequireConfig(gateway.Sadad,
		"merchant", p.cfg.Merchant,
		"terminal-id", p.cfg.TerminalID,
		"transaction-key", p.cfg.TransactionKey,
		"callback-url", p.cfg.CallbackURL,
	)
	if err != nil {
		return err
	}

	if _, err := SignData(p.cfg.TransactionKey, "probe"); err != nil {
		return gateway.NewConfigError(gateway.Sadad, "transaction-key", err)
	}
	return nil
}

type paymentRequest struct {
	TerminalID     string `json:"TerminalId"`
	MerchantID     string `json:"MerchantId"`
	Amount         int64  `json:"Amount"`
	SignData       string `json:"SignData"`
	ReturnURL      string `json:"ReturnUrl"`
	LocalDateTime  string `json:"LocalDateTime"`
	OrderID        int64  `json:"OrderId"`
	AdditionalData string `json:"AdditionalData,omitempty"`
	UserID         string `json:"UserId,omitempty"`
}

type paymentResponse struct {
	ResCode     int    `json:"ResCode"`
	Token       string `json:"Token"`
	Description string `json:"Description"`
}

type verifyRequest struct {
	Token    string `json:"Token"`
	SignData string `json:"SignData"`
}

type verifyResponse struct {
	ResCode       int    `json:"ResCode"`
	Amount        int64  `json:"Amount"`
	Description   string `json:"Description"`
	RetrivalRefNo string `json:"RetrivalRefNo"`
	SystemTraceNo string `json:"SystemTraceNo"`
	OrderID       int64  `json:"OrderId"`
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

	sign, err := SignData(p.cfg.TransactionKey, fmt.Sprintf("%s;%d;%d", p.cfg.TerminalID, tx.ID, tx.Amount))
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeSign, Message(CodeSign)).WithCause(err))
	}

	req := paymentRequest{
		TerminalID:     p.cfg.TerminalID,
		MerchantID:     p.cfg.Merchant,
		Amount:         tx.Amount,
		SignData:       sign,
		ReturnURL:      callback,
		LocalDateTime:  p.Now().Format(dateLayout),
		OrderID:        tx.ID,
		AdditionalData: payment.AdditionalData,
		UserID:         payment.Mobile,
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var res paymentResponse
	if err := httpclient.PostJSON(callCtx, p.HTTP(), gateway.Endpoint(p.cfg.RequestURL, RequestURL), req, &res, nil); err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	if res.ResCode != 0 || res.Token == "" {
		code := strconv.Itoa(res.ResCode)
		if res.ResCode == 0 {
			code = CodeInvalidResponse
		}
		return nil, p.Fail(ctx, tx, p.NewError(code, describe(code, res.Description)))
	}

	if err := p.TransactionSetRefID(ctx, tx, res.Token); err != nil {
		return nil, err
	}
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
	if err := p.RequireCallback(cb, "token", "ResCode"); err != nil {
		return err
	}
	token := cb.Get("token")
	if token != tx.RefIDValue() {
		return p.InvalidCallback("token does not match transaction")
	}

	if code := cb.Get("ResCode"); code != CodeSuccess {
		return p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}

	sign, err := SignData(p.cfg.TransactionKey, token)
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeSign, Message(CodeSign)).WithCause(err))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var res verifyResponse
	err = httpclient.PostJSON(callCtx, p.HTTP(), gateway.Endpoint(p.cfg.VerifyURL, VerifyURL),
		verifyRequest{Token: token, SignData: sign}, &res, nil)
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	if res.ResCode != 0 {
		code := strconv.Itoa(res.ResCode)
		return p.Fail(ctx, tx, p.NewError(code, describe(code, res.Description)))
	}
	if res.Amount != tx.Amount {
		return p.Fail(ctx, tx, p.NewError(CodeAmountMismatch, Message(CodeAmountMismatch)))
	}

	tracking := res.RetrivalRefNo
	if tracking == "" {
		tracking = res.SystemTraceNo
	}
	meta := map[string]any{
		"retrieval_ref_no": res.RetrivalRefNo,
		"system_trace_no":  res.SystemTraceNo,
	}

	if err := p.TransactionSucceed(ctx, tx, tracking, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

func describe(code, description string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	if description != "" {
		return description
	}
	return Message(code)
}
