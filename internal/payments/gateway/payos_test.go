package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksumKey = "test-checksum-key"

func newTestGateway() *payosGateway {
	cfg := &config.Config{
		Log:                logger.Discard(),
		GatewayChecksumKey: testChecksumKey,
	}
	return NewPayOSGateway(cfg).(*payosGateway)
}

func hmacHex(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignLinkUsesFixedFieldOrder(t *testing.T) {
	g := newTestGateway()

	req := &LinkRequest{
		OrderCode:   1764400000000123,
		Amount:      400000,
		Description: "BK 1764400000000123",
		ReturnURL:   "https://app.example.com/return",
		CancelURL:   "https://app.example.com/cancel",
	}

	want := hmacHex(testChecksumKey,
		"amount=400000&cancelUrl=https://app.example.com/cancel&description=BK 1764400000000123"+
			"&orderCode=1764400000000123&returnUrl=https://app.example.com/return")
	assert.Equal(t, want, g.signLink(req))
}

func TestVerifyWebhookAcceptsValidSignature(t *testing.T) {
	g := newTestGateway()

	data := `{"orderCode":1764400000000123,"amount":400000,"code":"00","desc":"success","counterAccountNumber":"0123456789","reference":"FT123"}`
	canonical := "amount=400000&code=00&counterAccountNumber=0123456789&desc=success&orderCode=1764400000000123&reference=FT123"
	signature := hmacHex(testChecksumKey, canonical)
	body := fmt.Sprintf(`{"code":"00","desc":"success","data":%s,"signature":"%s"}`, data, signature)

	out, err := g.VerifyWebhook([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, int64(1764400000000123), out.OrderCode)
	assert.Equal(t, int64(400000), out.Amount)
	assert.True(t, out.Success())
	assert.Equal(t, "0123456789", out.CounterAccount)
}

func TestVerifyWebhookCanonicalizesNullAndBool(t *testing.T) {
	g := newTestGateway()

	data := `{"orderCode":42,"amount":1000,"code":"01","desc":"expired","reference":null,"test":true}`
	canonical := "amount=1000&code=01&desc=expired&orderCode=42&reference=&test=true"
	signature := hmacHex(testChecksumKey, canonical)
	body := fmt.Sprintf(`{"code":"01","desc":"expired","data":%s,"signature":"%s"}`, data, signature)

	out, err := g.VerifyWebhook([]byte(body))
	require.NoError(t, err)
	assert.False(t, out.Success())
}

func TestVerifyWebhookRejectsTamperedBody(t *testing.T) {
	g := newTestGateway()

	canonical := "amount=1000&code=00&desc=success&orderCode=42"
	signature := hmacHex(testChecksumKey, canonical)

	tampered := `{"orderCode":42,"amount":999999,"code":"00","desc":"success"}`
	body := fmt.Sprintf(`{"code":"00","desc":"success","data":%s,"signature":"%s"}`, tampered, signature)

	_, err := g.VerifyWebhook([]byte(body))
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeInvalidInput, appErr.Code)
}

func TestVerifyWebhookRejectsMissingSignature(t *testing.T) {
	g := newTestGateway()

	_, err := g.VerifyWebhook([]byte(`{"code":"00","data":{"orderCode":42}}`))
	require.Error(t, err)

	_, err = g.VerifyWebhook([]byte(`not json`))
	require.Error(t, err)
}
