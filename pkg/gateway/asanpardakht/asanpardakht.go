// Package asanpardakht drives the Asan Pardakht SOAP gateway. Requests and the
// returned callback parameters are AES encrypted with the merchant key.
package asanpardakht

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/soap"
)

const (
	ServerURL = "https://services.asanpardakht.net/paygate/merchantservices.asmx"
	GateURL   = "https://asan.shaparak.ir"

	namespace  = "http://tempuri.org/"
	dateLayout = "20060102 150405"
)

var _ gateway.Port = (*Port)(nil)

type Port struct {
	gateway.Base

	cfg    gateway.AsanpardakhtConfig
	cipher *Cipher
	client *soap.Client
}

func New() *Port {
	return &Port{}
}

func (p *Port) Boot() error {
	p.cfg = p.Config().Asanpardakht
	err := gateway.RequireConfig(gateway.Asanpardakht,
		"merchant-config-id", p.cfg.MerchantConfigID,
		"username", p.cfg.Username,
		"password", p.cfg.Password,
		"key", p.cfg.Key,
		"iv", p.cfg.IV,
		"callback-url", p.cfg.CallbackURL,
	)
	if err != nil {
		return err
	}

	c, err := NewCipher(p.cfg.Key, p.cfg.IV)
	if err != nil {
		return gateway.NewConfigError(gateway.Asanpardakht, "key", err)
	}
	p.cipher = c

	p.client = soap.NewClient(p.HTTP(), gateway.Endpoint(p.cfg.ServerURL, ServerURL), namespace,
		soap.Qualified(), soap.WithActionPrefix(namespace))
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

	request := strings.Join([]string{
		"1",
		p.cfg.Username,
		p.cfg.Password,
		strconv.FormatInt(tx.ID, 10),
		strconv.FormatInt(tx.Amount, 10),
		p.Now().Format(dateLayout),
		payment.AdditionalData,
		callback,
		"0",
	}, ",")

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.client.Call(callCtx, "RequestOperation",
		soap.P("merchantConfigurationID", p.cfg.MerchantConfigID),
		soap.P("encryptedRequest", p.cipher.Encrypt(request)),
	)
	if err != nil {
		return nil, p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
	}

	code, refID, _ := strings.Cut(res.Result("RequestOperation"), ",")
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

// ReturningParams is the decrypted callback payload.
type ReturningParams struct {
	Amount        int64
	SaleOrderID   string
	RefID         string
	ResCode       string
	ResMessage    string
	PayGateTranID string
	RRN           string
	LastFourPAN   string
}

func ParseReturningParams(plain string) (*ReturningParams, error) {
	parts := strings.Split(plain, ",")
	if len(parts) < 8 {
		return nil, fmt.Errorf("expected 8 returning params, got %d", len(parts))
	}

	amount, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return &ReturningParams{
		Amount:        amount,
		SaleOrderID:   parts[1],
		RefID:         parts[2],
		ResCode:       parts[3],
		ResMessage:    parts[4],
		PayGateTranID: parts[5],
		RRN:           parts[6],
		LastFourPAN:   parts[7],
	}, nil
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	if err := p.VerifyTransaction(tx); err != nil {
		return err
	}
	if err := p.RequireCallback(cb, "ReturningParams"); err != nil {
		return err
	}

	plain, err := p.cipher.Decrypt(cb.Get("ReturningParams"))
	if err != nil {
		return p.InvalidCallback("cannot decrypt ReturningParams")
	}
	params, err := ParseReturningParams(plain)
	if err != nil {
		return p.InvalidCallback(err.Error())
	}
	if params.RefID != tx.RefIDValue() || params.SaleOrderID != strconv.FormatInt(tx.ID, 10) {
		return p.InvalidCallback("returning params do not match transaction")
	}

	if params.ResCode != "0" && params.ResCode != "00" {
		return p.Fail(ctx, tx, p.NewError(params.ResCode, describe(params.ResCode, params.ResMessage)))
	}
	if params.Amount != tx.Amount {
		return p.Fail(ctx, tx, p.NewError(CodeAmountMismatch, Message(CodeAmountMismatch)))
	}

	callCtx, cancel := p.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	credentials := p.cipher.Encrypt(p.cfg.Username + "," + p.cfg.Password)
	for _, step := range []struct {
		operation string
		want      string
	}{
		{operation: "RequestVerification", want: CodeVerified},
		{operation: "RequestReconciliation", want: CodeReconciled},
	} {
		res, err := p.client.Call(callCtx, step.operation,
			soap.P("merchantConfigurationID", p.cfg.MerchantConfigID),
			soap.P("encryptedCredentials", credentials),
			soap.P("payGateTranID", params.PayGateTranID),
		)
		if err != nil {
			return p.Fail(ctx, tx, p.NewError(CodeConnection, Message(CodeConnection)).WithCause(err))
		}
		if code := res.Result(step.operation); code != step.want {
			if code == "" {
				code = CodeInvalidResponse
			}
			return p.Fail(ctx, tx, p.NewError(code, Message(code)))
		}
	}

	meta := map[string]any{
		"pay_gate_tran_id": params.PayGateTranID,
		"rrn":              params.RRN,
	}
	if params.LastFourPAN != "" {
		meta["card_last_four"] = params.LastFourPAN
	}

	tracking := params.RRN
	if tracking == "" {
		tracking = params.PayGateTranID
	}
	if err := p.TransactionSucceed(ctx, tx, tracking, meta); err != nil {
		return err
	}
	return p.NewLog(ctx, tx, CodeSuccess, Message(CodeSuccess))
}

func describe(code, message string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	if message != "" {
		return message
	}
	return Message(code)
}
