package mellat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/gatewaytest"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBank struct {
	server  *httptest.Server
	results map[string]string

	mu    sync.Mutex
	calls []string
	last  map[string]string
}

func newFakeBank(t *testing.T, results map[string]string) *fakeBank {
	b := &fakeBank{results: results, last: map[string]string{}}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		op := strings.Trim(r.Header.Get("SOAPAction"), `"`)

		b.mu.Lock()
		b.calls = append(b.calls, op)
		b.last[op] = string(body)
		b.mu.Unlock()

		fmt.Fprintf(w, `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>`+
			`<ns2:%sResponse xmlns:ns2="http://interfaces.core.sw.bps.com/"><return>%s</return></ns2:%sResponse>`+
			`</S:Body></S:Envelope>`, op, b.results[op], op)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBank) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBank) Last(op string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[op]
}

func setup(t *testing.T, results map[string]string) (*Port, *memstore.Store, *fakeBank) {
	bank := newFakeBank(t, results)

	cfg := gatewaytest.Config(t)
	cfg.Mellat = gateway.MellatConfig{
		TerminalID:  1234,
		Username:    "user",
		Password:    "pass",
		CallbackURL: "https://shop.example/callback",
		ServerURL:   bank.server.URL,
	}

	p := New()
	return p, gatewaytest.Boot(t, p, gateway.Mellat, cfg), bank
}

func TestBoot_MissingTerminal(t *testing.T) {
	cfg := gatewaytest.Config(t)
	p := New()
	p.Configure(gatewaytest.Options(cfg, memstore.New()))
	p.SetPortName(gateway.Mellat)

	assert.ErrorIs(t, p.Boot(), gateway.ErrMissingCredential)
}

func TestReady(t *testing.T) {
	p, store, bank := setup(t, map[string]string{"bpPayRequest": "0,AF82041a2Bf6989c7fF9"})

	tx, err := p.Ready(context.Background(), gateway.Payment{Amount: 25000})
	require.NoError(t, err)
	assert.Equal(t, "AF82041a2Bf6989c7fF9", tx.RefIDValue())

	req := bank.Last("bpPayRequest")
	assert.Contains(t, req, "<terminalId>1234</terminalId>")
	assert.Contains(t, req, "<localDate>20240101</localDate>")
	assert.Contains(t, req, "<localTime>000000</localTime>")
	assert.Contains(t, req, "<payerId>0</payerId>")

	redirect, err := p.Redirect(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, GateURL, redirect.URL)
	assert.Equal(t, []gateway.Field{{Name: "RefId", Value: "AF82041a2Bf6989c7fF9"}}, redirect.Fields)

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
	assert.Empty(t, logs)
}

func TestReady_Rejected(t *testing.T) {
	p, store, _ := setup(t, map[string]string{"bpPayRequest": "21"})

	_, err := p.Ready(context.Background(), gateway.Payment{Amount: 25000})
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "21", gwErr.Code)
	assert.Equal(t, "invalid merchant", gwErr.Message)

	row, logs := gatewaytest.Reload(t, store, gwErr.TransactionID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
}

func callback(tx *gateway.Transaction, resCode string) gateway.Params {
	return gateway.Params{
		"RefId":           tx.RefIDValue(),
		"ResCode":         resCode,
		"SaleOrderId":     fmt.Sprint(tx.ID),
		"SaleReferenceId": "1122334455",
		"CardHolderPan":   "6104****1111",
	}
}

func TestVerify_Success(t *testing.T) {
	p, store, bank := setup(t, map[string]string{"bpVerifyRequest": "0", "bpSettleRequest": "0"})
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	require.NoError(t, p.Verify(context.Background(), tx, callback(tx, "0")))
	assert.Equal(t, []string{"bpVerifyRequest", "bpSettleRequest"}, bank.Calls())

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusSucceed, row.Status)
	assert.Equal(t, "1122334455", row.TrackingCodeValue())
	assert.Equal(t, "6104****1111", row.PayerMeta["card_number"])
	assert.Len(t, logs, 1)
}

func TestVerify_AlreadySettledAccepted(t *testing.T) {
	p, store, _ := setup(t, map[string]string{"bpVerifyRequest": "0", "bpSettleRequest": "45"})
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	require.NoError(t, p.Verify(context.Background(), tx, callback(tx, "0")))

	row, _ := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusSucceed, row.Status)
}

func TestVerify_SettleFailedReverses(t *testing.T) {
	p, store, bank := setup(t, map[string]string{"bpVerifyRequest": "0", "bpSettleRequest": "46", "bpReversalRequest": "0"})
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	err := p.Verify(context.Background(), tx, callback(tx, "0"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "46", gwErr.Code)
	assert.Equal(t, []string{"bpVerifyRequest", "bpSettleRequest", "bpReversalRequest"}, bank.Calls())

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
}

func TestVerify_VerifyRejected(t *testing.T) {
	p, store, bank := setup(t, map[string]string{"bpVerifyRequest": "43"})
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	err := p.Verify(context.Background(), tx, callback(tx, "0"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "43", gwErr.Code)
	assert.Equal(t, []string{"bpVerifyRequest"}, bank.Calls())

	row, _ := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
}

func TestVerify_PayerCancelled(t *testing.T) {
	p, store, bank := setup(t, nil)
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	err := p.Verify(context.Background(), tx, callback(tx, "17"))
	gwErr, ok := gateway.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, "17", gwErr.Code)
	assert.Empty(t, bank.Calls())

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusFailed, row.Status)
	assert.Len(t, logs, 1)
}

func TestVerify_RefIDMismatch(t *testing.T) {
	p, store, bank := setup(t, nil)
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	cb := callback(tx, "0")
	cb["RefId"] = "OTHER"
	assert.ErrorIs(t, p.Verify(context.Background(), tx, cb), gateway.ErrInvalidRequest)
	assert.Empty(t, bank.Calls())

	row, _ := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
}

func TestVerify_EmptyCallbackValues(t *testing.T) {
	p, store, bank := setup(t, nil)
	tx := gatewaytest.Pending(t, store, gateway.Mellat, 25000, "REF1")

	for _, key := range []string{"RefId", "ResCode"} {
		cb := callback(tx, "0")
		cb[key] = ""
		assert.ErrorIs(t, p.Verify(context.Background(), tx, cb), gateway.ErrInvalidRequest, key)
	}
	assert.Empty(t, bank.Calls())

	row, logs := gatewaytest.Reload(t, store, tx.ID)
	assert.Equal(t, gateway.StatusPending, row.Status)
	assert.Empty(t, logs)
}
