package payment

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"birthdayclub/internal/domain"
)

// MockSignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const MockSignatureHeader = "X-Mock-Signature"

// mockNotification mirrors the YooKassa webhook shape.
type mockNotification struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

type mockGateway struct {
	secret  []byte
	baseURL string
}

// NewMock returns a gateway that charges nothing. Confirmation links point at
// <baseURL>/mock-payment and notifications must be signed with secret.
func NewMock(secret, baseURL string) domain.PaymentGateway {
	return &mockGateway{secret: []byte(secret), baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *mockGateway) Name() string { return ProviderMock }

func (m *mockGateway) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentHandle, error) {
	suffix, err := randomBase36(9)
	if err != nil {
		return nil, unavailable(ProviderMock, err)
	}
	id := fmt.Sprintf("mock_payment_%d_%s", nowFunc().UnixMilli(), suffix)
	q := url.Values{"payment_id": {id}, "guest_id": {req.GuestID}}
	return &domain.PaymentHandle{
		PaymentID:       id,
		ConfirmationURL: m.baseURL + "/mock-payment?" + q.Encode(),
	}, nil
}

func (m *mockGateway) VerifyNotification(ctx context.Context, headers map[string][]string, body []byte) (*domain.PaymentOutcome, error) {
	got, err := hex.DecodeString(header(headers, MockSignatureHeader))
	if err != nil || len(got) == 0 || !hmac.Equal(got, SignMock(m.secret, body)) {
		return nil, domain.ErrInvalidSignature
	}
	var n mockNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	guestID := n.Object.Metadata["guestId"]
	if n.Event == "" || guestID == "" {
		return nil, domain.ErrMalformedPayload
	}
	return &domain.PaymentOutcome{EventType: n.Event, GuestID: guestID, Reference: n.Object.ID}, nil
}

// SignMock returns the HMAC-SHA256 of body under secret.
func SignMock(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

func randomBase36(n int) (string, error) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	base := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[v.Int64()])
	}
	return b.String(), nil
}
