// Package paypal drives the PayPal REST payments API.
package paypal

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/httpclient"
	"github.com/shopspring/decimal"
)

const (
	LiveAPIURL     = "https://api.paypal.com"
	SandboxAPIURL  = "https://api.sandbox.paypal.com"
	LiveGateURL    = "https://www.paypal.com/cgi-bin/webscr?cmd=_express-checkout"
	SandboxGateURL = "https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_express-checkout"

	ModeSandbox = "sandbox"

	defaultCurrency = "USD"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg     gateway.PaypalConfig
	apiURL  string
	gateURL string
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Paypal
	err := gateway.RequireConfig(gateway.Paypal,
		"client-id", p.cfg.ClientID,
		"secret", p.cfg.Secret,
		"callback-url", p.cfg.CallbackURL,
	)
	if err != nil {
		return err
	}

	api, gate := LiveAPIURL, LiveGateURL
	if p.cfg.Mode == ModeSandbox {
		api, gate = SandboxAPIURL, SandboxGateURL
	}
	p.apiURL = strings.TrimSuffix(gateway.Endpoint(p.cfg.APIURL, api), "/")
	p.gateURL = gateway.Endpoint(p.cfg.GateURL, gate)

	if p.cfg.Currency == "" {
		p.cfg.Currency = defaultCurrency
	}
	return nil
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type sale struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type transaction struct {
	Amount           amount `json:"amount"`
	Description      string `json:"description,omitempty"`
	InvoiceNumber    string `json:"invoice_number"`
	RelatedResources []struct {
		Sale sale `json:"sale"`
	} `json:"related_resources,omitempty"`
}

type payer struct {
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status,omitempty"`
	PayerInfo     *struct {
		Email   string `json:"email"`
		PayerID string `json:"payer_id"`
	} `json:"payer_info,omitempty"`
}

type payment struct {
	ID           string        `json:"id,omitempty"`
	Intent       string        `json:"intent"`
	State        string        `json:"state,omitempty"`
	Payer        payer         `json:"payer"`
	Transactions []transaction `json:"transactions"`
	RedirectURLs *redirectURLs `json:"redirect_urls,omitempty"`
	Links        []link        `json:"links,omitempty"`
}

type redirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// paymentResult is a payment or, on 4xx/5xx, the PayPal error body.
type paymentResult struct {
	payment
	apiError
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (p *Port) token(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(p.cfg.ClientID + ":" + p.cfg.Secret))

	body, err := httpclient.PostForm(ctx, p.HTTP(), p.apiURL+"/v1/oauth2/token",
		url.Values{"grant_type": {"client_credentials"}},
		map[string]string{"Authorization": "Basic " + basic, "Accept": "application/json"})
	if err != nil {
		return "", err
	}

	var res tokenResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", err
	}
	if res.AccessToken == "" {
		return "", httpclient.ErrUnexpectedStatus
	}
	return res.AccessToken, nil
}

// Total converts an amount in cents to the decimal string PayPal expects.
func Total(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func (p *Port) Ready(ctx context.Context, pay gateway.Payment) (*gateway.Transaction, error) {
	tx, err := p.NewTransaction(ctx, pay.Amount)
	if err != nil {
		return nil, err
	}

	returnURL, err := p.CallbackURL(tx, pay.CallbackURL, p.cfg.CallbackURL)
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeInternal, Message(CodeInternal)).WithCause(err))
	}
	cancelURL, err := p.CallbackURL(tx, "", gateway.Endpoint(p.cfg.CancelURL, p.cfg.CallbackURL))
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeInternal, Message(CodeInternal)).WithCause(err))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	access, err := p.token(callCtx)
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeAuth, Message(CodeAuth)).WithCause(err))
	}

	req := payment{
		Intent: "sale",
		Payer:  payer{PaymentMethod: "paypal"},
		Transactions: []transaction{{
			Amount:        amount{Total: Total(tx.Amount), Currency: p.cfg.Currency},
			Description:   pay.Description,
			InvoiceNumber: strconv.FormatInt(tx.ID, 10),
		}},
	}
	req.RedirectURLs = &redirectURLs{ReturnURL: returnURL, CancelURL: cancelURL}

	var res paymentResult
	if err := httpclient.PostJSON(callCtx, p.HTTP(), p.apiURL+"/v1/payments/payment", req, &res, bearer(access)); err != nil {
		return nil, p.Fail(ctx, tx, p.apiFailure(err, res))
	}

	approval := approvalToken(res.Links)
	if res.ID == "" || approval == "" {
		return nil, p.Fail(ctx, tx, p.NewError(CodeInvalidResponse, Message(CodeInvalidResponse)))
	}

	if err := p.TransactionSetRefID(ctx, tx, approval); err != nil {
		return nil, err
	}
	return tx, nil
}

// Redirect sends the payer to the approval page of the EC token stored as RefID.
func (p *Port) Redirect(_ context.Context, tx *gateway.Transaction) (*gateway.Redirect, error) {
	if err := p.RequireRefID(tx); err != nil {
		return nil, err
	}

	gate, err := url.Parse(p.gateURL)
	if err != nil {
		return nil, err
	}
	q := gate.Query()
	q.Set("token", tx.RefIDValue())
	gate.RawQuery = q.Encode()

	return gateway.NewGetRedirect(gate.String()), nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "token"); err != nil {
		return err
	}
	if cb.Get("token") != tx.RefIDValue() {
		return p.InvalidCallback("token does not match transaction")
	}

	paymentID, payerID := cb.Get("paymentId"), cb.Get("PayerID")
	if paymentID == "" || payerID == "" {
		return p.Fail(ctx, tx, p.NewError(CodeCancelled, Message(CodeCancelled)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	access, err := p.token(callCtx)
	if err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeAuth, Message(CodeAuth)).WithCause(err))
	}

	var current payment
	if err := httpclient.GetJSON(callCtx, p.HTTP(), p.apiURL+"/v1/payments/payment/"+url.PathEscape(paymentID), &current, bearer(access)); err != nil {
		return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}
	if !p.belongs(tx, current) {
		return p.Fail(ctx, tx, p.NewError(CodeMismatch, Message(CodeMismatch)))
	}

	var executed paymentResult
	err = httpclient.PostJSON(callCtx, p.HTTP(), p.apiURL+"/v1/payments/payment/"+url.PathEscape(paymentID)+"/execute",
		map[string]string{"payer_id": payerID}, &executed, bearer(access))
	if err != nil {
		return p.Fail(ctx, tx, p.apiFailure(err, executed))
	}

	if executed.State != CodeSuccess {
		state := executed.State
		if state == "" {
			state = CodeInvalidResponse
		}
		return p.Fail(ctx, tx, p.NewError(state, Message(state)))
	}

	tracking := executed.ID
	if len(executed.Transactions) > 0 && len(executed.Transactions[0].RelatedResources) > 0 {
		tracking = executed.Transactions[0].RelatedResources[0].Sale.ID
	}

	meta := map[string]any{"payment_id": executed.ID, "payer_id": payerID}
	if info := executed.Payer.PayerInfo; info != nil && info.Email != "" {
		meta["payer_email"] = info.Email
	}

	if err := p.TransactionSucceed(ctx, tx, tracking, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

func (p *Port) belongs(tx *gateway.Transaction, pay payment) bool {
	if len(pay.Transactions) != 1 {
		return false
	}
	t := pay.Transactions[0]
	return t.InvoiceNumber == strconv.FormatInt(tx.ID, 10) &&
		t.Amount.Total == Total(tx.Amount) &&
		strings.EqualFold(t.Amount.Currency, p.cfg.Currency)
}

func (p *Port) apiFailure(err error, res paymentResult) *gateway.GatewayError {
	if res.Name != "" {
		message := Message(res.Name)
		if _, ok := messages[res.Name]; !ok && res.Message != "" {
			message = res.Message
		}
		return p.NewError(res.Name, message).WithCause(err)
	}
	return p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err)
}

func approvalToken(links []link) string {
	for _, l := range links {
		if l.Rel != "approval_url" {
			continue
		}
		u, err := url.Parse(l.Href)
		if err != nil {
			return ""
		}
		return u.Query().Get("token")
	}
	return ""
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
