// Package payir drives the pay.ir REST gateway.
package payir

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/httpclient"
)

const (
	ServerURL = "https://pay.ir/pg/"
	GateURL   = "https://pay.ir/pg/"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg       gateway.PayirConfig
	serverURL string
	gateURL   string
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Payir
	if err := gateway.RequireConfig(gateway.Payir, "api", p.cfg.API, "callback-url", p.cfg.CallbackURL); err != nil {
		return err
	}

	p.serverURL = strings.TrimSuffix(gateway.Endpoint(p.cfg.ServerURL, ServerURL), "/") + "/"
	p.gateURL = strings.TrimSuffix(gateway.Endpoint(p.cfg.GateURL, GateURL), "/") + "/"
	return nil
}

type sendRequest struct {
	API          string `json:"api"`
	Amount       int64  `json:"amount"`
	Redirect     string `json:"redirect"`
	Mobile       string `json:"mobile,omitempty"`
	FactorNumber string `json:"factorNumber"`
	Description  string `json:"description,omitempty"`
}

type verifyRequest struct {
	API   string `json:"api"`
	Token string `json:"token"`
}

// response covers send and verify. amount arrives as a string on some accounts.
type response struct {
	Status       int             `json:"status"`
	Token        string          `json:"token"`
	Amount       json.Number     `json:"amount"`
	TransID      json.RawMessage `json:"transId"`
	FactorNumber string          `json:"factorNumber"`
	CardNumber   string          `json:"cardNumber"`
	ErrorCode    json.Number     `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
}

func (r *response) code() string {
	if r.Status == 1 {
		return CodeSuccess
	}
	if r.ErrorCode != "" {
		return r.ErrorCode.String()
	}
	return CodeInvalidResponse
}

// transID accepts both the numeric and the quoted form.
func (r *response) transID() string {
	id := strings.Trim(string(r.TransID), `"`)
	if id == "null" {
		return ""
	}
	return id
}

func (p *Port) post(ctx context.Context, endpoint string, in any) (*response, error) {
	var res response
	err := httpclient.PostJSON(ctx, p.HTTP(), p.serverURL+endpoint, in, &res, nil)
	if err != nil && res.Status == 0 && res.ErrorCode == "" {
		return nil, err
	}
	return &res, nil
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

	res, err := p.post(callCtx, "send", sendRequest{
		API:          p.cfg.API,
		Amount:       tx.Amount,
		Redirect:     callback,
		Mobile:       payment.Mobile,
		FactorNumber: strconv.FormatInt(tx.ID, 10),
		Description:  payment.Description,
	})
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	if code := res.code(); code != CodeSuccess || res.Token == "" {
		if code == CodeSuccess {
			code = CodeInvalidResponse
		}
		return nil, p.Fail(ctx, tx, p.NewError(code, Message(code)))
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
	return gateway.NewGetRedirect(p.gateURL + tx.RefIDValue()), nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "token", "status"); err != nil {
		return err
	}
	token := cb.Get("token")
	if token != tx.RefIDValue() {
		return p.InvalidCallback("token does not match transaction")
	}

	if cb.Get("status") != CodeSuccess {
		return p.Fail(ctx, tx, p.NewError(CodeCancelled, Message(CodeCancelled)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.post(callCtx, "verify", verifyRequest{API: p.cfg.API, Token: token})
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	if code := res.code(); code != CodeSuccess {
		return p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}
	if res.transID() == "" {
		return p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)))
	}
	if paid, err := res.Amount.Int64(); err != nil || paid != tx.Amount {
		return p.Fail(ctx, tx, p.NewError(CodeAmountMismatch, Message(CodeAmountMismatch)))
	}

	meta := map[string]any{"trans_id": res.transID()}
	if res.CardNumber != "" {
		meta["card_number"] = res.CardNumber
	}

	if err := p.TransactionSucceed(ctx, tx, res.transID(), meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}
