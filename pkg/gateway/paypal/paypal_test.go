package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/gatewaytest"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaypal struct {
	server       *httptest.Server
	invoice      atomic.Value
	executeState string
	executeCode  int
	executeBody  string
	executeCalls atomic.Int32
	lastCreate   atomic.Value
}

func newFakePaypal(t *testing.T) *fakePaypal {
	f := &fakePaypal{executeState: "approved", executeCode: http.StatusOK}
	f.invoice.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Write([]byte(`{"access_token":"A21AA","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		var req payment
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastCreate.Store(req)
		fmt.Fprint(w, `{"id":"PAY-1","state":"created","links":[`+
			`{"href":"https://api.sandbox.paypal.com/v1/payments/payment/PAY-1","rel":"self","method":"GET"},`+
			`{"href":"https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_express-checkout&token=EC-60U79048BN7719609","rel":"approval_url","method":"REDIRECT"}]}`)
	})
	mux.HandleFunc("/v1/payments/payment/PAY-1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"PAY-1","state":"created","transactions":[{"amount":{"total":"10.50","currency":"USD"},"invoice_number":"%s"}]}`,
			f.invoice.Load().(string))
	})
	mux.HandleFunc("/v1/payments/payment/PAY-1/execute", func(w http.ResponseWriter, r *http.Request) {
		f.executeCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer A21AA" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(f.executeCode)
		if f.executeBody != "" {
			w.Write([]byte(f.executeBody))
			return
		}
		fmt.Fprintf(w, `{"id":"PAY-1","state":"%s","payer":{"payment_method":"paypal","payer_info":{"email":"buyer@example.com","payer_id":"PAYER1"}},`+
			`"transactions":[{"amount":{"total":"10.50","currency":"USD"},"related_resources":[{"sale":{"id":"SALE-9","state":"completed"}}]}]}`, f.executeState)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func setup(t *testing.T, f *fakePaypal) (*Port, *memstore.Store) {
	cfg := gatewaytest.Config(t)
	cfg.Paypal = gateway.PaypalConfig{
		ClientID:    "client",
		Secret:      "secret",
		Mode:        ModeSandbox,
		CallbackURL: "https://shop.example/callback",
		APIURL:      f.server.URL,
	}
	p := New()
	return p, gatewaytest.Boot(t, p, gateway.Paypal, cfg)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, "10.50", Total(1050))
	assert.Equal(t, "0.01", Total(1))
	assert.Equal(t, "1000.00", Total(100000))
}

func TestReady(t *testing.T) {
	f := newFakePaypal(t)
	p, _ := setup(t, f)

	tx, err := p.Ready(context.Background(), gateway.Payment{Amount: 1050, Description: "order"})
	require.NoError(t, err)
	assert.Equal(t, "EC-60U79048BN7719609", tx.RefIDValue())

	req := f.lastCreate.Load().(payment)
	require.Len(t, req.Transactions, 1)
	assert.Equal(t, "10.50", req.Transactions[0].Amount.Total)
	assert.Equal(t, "USD", req.Transactions[0].Amount.Currency)
	assert.Equal(t, fmt.Sprint(tx.ID), req.Transactions[0].InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("https://shop.example/callback?transaction_id=%d", tx.ID), req.RedirectURLs.ReturnURL)

	redirect, err := p.Redirect(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_express-checkout&token=EC-60U79048BN7719609", redirect.URL)
}

func TestReady_BadCredentials(t *testing.T) {
	f := newFakePaypal(t)
	cfg := gatewaytest.Config(t)
	cfg.Paypal = gateway.PaypalConfig{ClientID: "client", Secret: "wrong", CallbackURL: "https://cb", APIURL: f.server.URL}
	p := New()
	store := gatewaytest.Boot(t, p, gateway.Paypal, cfg)

	_, err := p.Ready(context.Background(), gateway.Payment{Amount: 1050})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAuth, gwErr.Code)

	row, logs := gatewaytest.Reload(t, store, gwErr.TransactionID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
}

func callback(token string) gateway.Params {
	return gateway.Params{"token": token, "paymentId": "PAY-1", "PayerID": "PAYER1"}
}

func TestVerify_Success(t *testing.T) {
	f := newFakePaypal(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")
	f.invoice.Store(fmt.Sprint(tx.ID))

	require.NoError(t, p.Verify(context.Background(), tx, callback("EC-1")))

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusSucceed, row.Status)
	assert.Equal(t, "SALE-9", row.TrackingCodeValue())
	assert.Equal(t, "buyer@example.com", row.PayerMeta["payer_email"])
	assert.Len(t, logs, 1)
}

func TestVerify_ForeignPayment(t *testing.T) {
	f := newFakePaypal(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")
	f.invoice.Store("someone-else")

	err := p.Verify(context.Background(), tx, callback("EC-1"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeMismatch, gwErr.Code)
	assert.Zero(t, f.executeCalls.Load())
}

func TestVerify_ExecuteRejected(t *testing.T) {
	f := newFakePaypal(t)
	f.executeCode = http.StatusBadRequest
	f.executeBody = `{"name":"INSTRUMENT_DECLINED","message":"The instrument presented was either declined."}`
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")
	f.invoice.Store(fmt.Sprint(tx.ID))

	err := p.Verify(context.Background(), tx, callback("EC-1"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "INSTRUMENT_DECLINED", gwErr.Code)

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
}

func TestVerify_NotApproved(t *testing.T) {
	f := newFakePaypal(t)
	f.executeState = "failed"
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")
	f.invoice.Store(fmt.Sprint(tx.ID))

	err := p.Verify(context.Background(), tx, callback("EC-1"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "failed", gwErr.Code)

	row, _ := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
}

func TestVerify_Cancelled(t *testing.T) {
	f := newFakePaypal(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "EC-1"})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeCancelled, gwErr.Code)
	assert.Zero(t, f.executeCalls.Load())
}

func TestVerify_EmptyToken(t *testing.T) {
	f := newFakePaypal(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Paypal, 1050, "EC-1")

	cb := callback("EC-1")
	cb["token"] = ""
	assert.ErrorIs(t, p.Verify(context.Background(), tx, cb), gateway.ErrInvalidRequest)
	assert.Zero(t, f.executeCalls.Load())

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
	assert.Empty(t, logs)
}
