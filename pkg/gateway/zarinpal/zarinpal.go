// Package zarinpal drives the ZarinPal v4 REST gateway.
package zarinpal

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/httpclient"
)

const (
	APIURL         = "https://api.zarinpal.com/pg/v4/payment/"
	GateURL        = "https://www.zarinpal.com/pg/StartPay/"
	SandboxAPIURL  = "https://sandbox.zarinpal.com/pg/v4/payment/"
	SandboxGateURL = "https://sandbox.zarinpal.com/pg/StartPay/"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg     gateway.ZarinpalConfig
	apiURL  string
	gateURL string
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Zarinpal
	if err := gateway.RequireConfig(gateway.Zarinpal, "merchant-id", p.cfg.MerchantID, "callback-url", p.cfg.CallbackURL); err != nil {
		return err
	}

	api, gate := APIURL, GateURL
	if p.cfg.Sandbox {
		api, gate = SandboxAPIURL, SandboxGateURL
	}
	p.apiURL = strings.TrimSuffix(gateway.Endpoint(p.cfg.APIURL, api), "/") + "/"
	p.gateURL = strings.TrimSuffix(gateway.Endpoint(p.cfg.GateURL, gate), "/") + "/"
	return nil
}

type metadata struct {
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
}

type requestBody struct {
	MerchantID  string   `json:"merchant_id"`
	Amount      int64    `json:"amount"`
	CallbackURL string   `json:"callback_url"`
	Description string   `json:"description"`
	Metadata    metadata `json:"metadata"`
}

type verifyBody struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

// response covers both endpoints. errors is [] on success and an object on failure.
type response struct {
	Data struct {
		Code      int    `json:"code"`
		Message   string `json:"message"`
		Authority string `json:"authority"`
		RefID     int64  `json:"ref_id"`
		CardPan   string `json:"card_pan"`
		CardHash  string `json:"card_hash"`
	} `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r *response) code() string {
	var e apiError
	if len(r.Errors) > 0 && r.Errors[0] == '{' && json.Unmarshal(r.Errors, &e) == nil && e.Code != 0 {
		return strconv.Itoa(e.Code)
	}
	return strconv.Itoa(r.Data.Code)
}

func (p *Port) post(ctx context.Context, endpoint string, in any) (*response, error) {
	var res response
	err := httpclient.PostJSON(ctx, p.HTTP(), p.apiURL+endpoint, in, &res, nil)
	// validation errors come back as 4xx with a regular body
	if err != nil && res.code() == "0" {
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

	description := payment.Description
	if description == "" {
		description = p.cfg.Description
	}
	meta := metadata{Mobile: payment.Mobile, Email: payment.Email}
	if meta.Mobile == "" {
		meta.Mobile = p.cfg.Mobile
	}
	if meta.Email == "" {
		meta.Email = p.cfg.Email
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.post(callCtx, "request.json", requestBody{
		MerchantID:  p.cfg.MerchantID,
		Amount:      tx.Amount,
		CallbackURL: callback,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	if code := res.code(); code != CodeSuccess || res.Data.Authority == "" {
		if code == CodeSuccess {
			code = CodeInvalidResponse
		}
		return nil, p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}

	if err := p.TransactionSetRefID(ctx, tx, res.Data.Authority); err != nil {
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
	if err := p.RequireCallback(cb, "Authority", "Status"); err != nil {
		return err
	}
	authority := cb.Get("Authority")
	if authority != tx.RefIDValue() {
		return p.InvalidCallback("authority does not match transaction")
	}

	if cb.Get("Status") != "OK" {
		return p.Fail(ctx, tx, p.NewError(CodeCancelled, Message(CodeCancelled)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.post(callCtx, "verify.json", verifyBody{
		MerchantID: p.cfg.MerchantID,
		Amount:     tx.Amount,
		Authority:  authority,
	})
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	// 101 means the authority was verified before. The row is still PENDING here,
	// so the earlier verification never got recorded and this one completes it.
	code := res.code()
	if code != CodeSuccess && code != CodeVerified {
		return p.Fail(ctx, tx, p.NewError(code, Message(code)))
	}
	if res.Data.RefID == 0 {
		return p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)))
	}

	meta := map[string]any{}
	if res.Data.CardPan != "" {
		meta["card_number"] = res.Data.CardPan
	}
	if res.Data.CardHash != "" {
		meta["card_hash"] = res.Data.CardHash
	}

	if err := p.TransactionSucceed(ctx, tx, strconv.FormatInt(res.Data.RefID, 10), meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, code, Message(code))
}
