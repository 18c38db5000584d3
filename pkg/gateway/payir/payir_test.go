package payir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/gatewaytest"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/Behyna/bankgateway/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePayir struct {
	server      *httptest.Server
	sendReply   atomic.Value
	verifyReply atomic.Value
	lastSend    atomic.Value
	verifyCalls atomic.Int32
}

func newFakePayir(t *testing.T) *fakePayir {
	f := &fakePayir{}
	f.sendReply.Store(`{"status":1,"token":"tok-1"}`)
	f.verifyReply.Store(`{"status":1,"amount":"15000","transId":99887,"factorNumber":"1","cardNumber":"6037-99**-****-1234","message":"OK"}`)

	mux := http.NewServeMux()
	mux.HandleFunc("/pg/send", func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.lastSend.Store(req)
		if req.API != "test" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"status":0,"errorCode":-6,"errorMessage":"gateway not found"}`))
			return
		}
		w.Write([]byte(f.sendReply.Load().(string)))
	})
	mux.HandleFunc("/pg/verify", func(w http.ResponseWriter, r *http.Request) {
		f.verifyCalls.Add(1)
		w.Write([]byte(f.verifyReply.Load().(string)))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func config(t *testing.T, serverURL, api string) *gateway.Config {
	cfg := gatewaytest.Config(t)
	cfg.Payir = gateway.PayirConfig{
		API:         api,
		CallbackURL: "https://shop.example/callback",
		ServerURL:   serverURL + "/pg",
	}
	return cfg
}

func setup(t *testing.T, f *fakePayir) (*Port, *memstore.Store) {
	p := New()
	return p, gatewaytest.Boot(t, p, gateway.Payir, config(t, f.server.URL, "test"))
}

func TestBoot_MissingAPI(t *testing.T) {
	p := New()
	p.Configure(gatewaytest.Options(config(t, "http://localhost", ""), memstore.New()))
	p.SetPortName(gateway.Payir)

	err := p.Boot()
	assert.ErrorIs(t, err, gateway.ErrMissingCredential)
}

func TestReady(t *testing.T) {
	f := newFakePayir(t)
	p, _ := setup(t, f)

	tx, err := p.Ready(context.Background(), gateway.Payment{Amount: 15000, Mobile: "09120000000"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tx.RefIDValue())
	assert.Equal(t, gateway.StatusPending, tx.Status)

	req := f.lastSend.Load().(sendRequest)
	assert.Equal(t, int64(15000), req.Amount)
	assert.Equal(t, fmt.Sprint(tx.ID), req.FactorNumber)
	assert.Equal(t, "09120000000", req.Mobile)
	assert.Equal(t, fmt.Sprintf("https://shop.example/callback?transaction_id=%d", tx.ID), req.Redirect)

	redirect, err := p.Redirect(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, redirect.IsPost())
	assert.Equal(t, "https://pay.ir/pg/tok-1", redirect.URL)
}

func TestReady_Rejected(t *testing.T) {
	f := newFakePayir(t)
	p := New()
	store := gatewaytest.Boot(t, p, gateway.Payir, config(t, f.server.URL, "wrong"))

	_, err := p.Ready(context.Background(), gateway.Payment{Amount: 15000})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "-6", gwErr.Code)
	assert.Equal(t, Message("-6"), gwErr.Message)

	row, logs := gatewaytest.Reload(t, store, gwErr.TransactionID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	require.Len(t, logs, 1)
	assert.Equal(t, "-6", logs[0].StatusCode)
}

func TestReady_TransportError(t *testing.T) {
	client := new(mocks.HTTPClient)
	client.On("Post", mock.Anything, "https://pay.ir/pg/send", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	cfg := config(t, "", "test")
	cfg.Payir.ServerURL = ""
	store := memstore.New()
	opts := gatewaytest.Options(cfg, store)
	opts.HTTP = client

	p := New()
	p.Configure(opts)
	p.SetPortName(gateway.Payir)
	require.NoError(t, p.Boot())

	_, err := p.Ready(context.Background(), gateway.Payment{Amount: 15000})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeConnection, gwErr.Code)

	row, logs := gatewaytest.Reload(t, store, gwErr.TransactionID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
	client.AssertExpectations(t)
}

func TestVerify_Success(t *testing.T) {
	f := newFakePayir(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "tok-1", "status": "1"})
	require.NoError(t, err)

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusSucceed, row.Status)
	assert.Equal(t, "99887", row.TrackingCodeValue())
	assert.Equal(t, "6037-99**-****-1234", row.PayerMeta["card_number"])
	require.Len(t, logs, 1)
	assert.Equal(t, CodeSuccess, logs[0].StatusCode)
}

func TestVerify_Cancelled(t *testing.T) {
	f := newFakePayir(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "tok-1", "status": "0"})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeCancelled, gwErr.Code)
	assert.Zero(t, f.verifyCalls.Load())

	row, _ := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
}

func TestVerify_TokenMismatch(t *testing.T) {
	f := newFakePayir(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "tok-2", "status": "1"})
	assert.ErrorIs(t, err, gateway.ErrInvalidRequest)

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
	assert.Empty(t, logs)
	assert.Zero(t, f.verifyCalls.Load())
}

func TestVerify_EmptyCallbackValues(t *testing.T) {
	f := newFakePayir(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	for _, cb := range []gateway.Params{
		{"token": "tok-1", "status": ""},
		{"token": "", "status": "1"},
	} {
		assert.ErrorIs(t, p.Verify(context.Background(), tx, cb), gateway.ErrInvalidRequest)
	}

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
	assert.Empty(t, logs)
	assert.Zero(t, f.verifyCalls.Load())
}

func TestVerify_AmountMismatch(t *testing.T) {
	f := newFakePayir(t)
	f.verifyReply.Store(`{"status":1,"amount":10000,"transId":"99887"}`)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "tok-1", "status": "1"})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, CodeAmountMismatch, gwErr.Code)
}

func TestVerify_BankError(t *testing.T) {
	f := newFakePayir(t)
	f.verifyReply.Store(`{"status":0,"errorCode":-26,"errorMessage":"verified before"}`)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")

	err := p.Verify(context.Background(), tx, gateway.Params{"token": "tok-1", "status": "1"})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "-26", gwErr.Code)

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	require.Len(t, logs, 1)
	assert.Equal(t, Message("-26"), logs[0].Message)
}

func TestVerify_Retry(t *testing.T) {
	f := newFakePayir(t)
	p, store := setup(t, f)
	tx := gatewaytest.Pending(t, store, gateway.Payir, 15000, "tok-1")
	cb := gateway.Params{"token": "tok-1", "status": "1"}

	require.NoError(t, p.Verify(context.Background(), tx, cb))
	assert.ErrorIs(t, p.Verify(context.Background(), tx, cb), gateway.ErrRetryRejected)
	assert.Equal(t, int32(1), f.verifyCalls.Load())
}
