package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"birthdayclub/internal/domain"
)

// snapCreator is the part of snap.Client the gateway calls.
type snapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type midtransGateway struct {
	client    snapCreator
	serverKey string
}

// NewMidtrans returns a Snap gateway. production selects the live environment.
func NewMidtrans(serverKey string, production bool) domain.PaymentGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	client := &snap.Client{}
	client.New(serverKey, env)
	return &midtransGateway{client: client, serverKey: serverKey}
}

func (g *midtransGateway) Name() string { return ProviderMidtrans }

// orderID is the guest id plus a base-36 timestamp, so each attempt gets a
// fresh order while the guest stays recoverable from it.
func orderID(guestID string) string {
	return guestID + "-" + strconv.FormatInt(nowFunc().UnixMilli(), 36)
}

// grossAmount converts minor units to whole currency units, rounding half up.
func grossAmount(m domain.Money) int64 {
	return (m.Minor() + 50) / 100
}

func (g *midtransGateway) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentHandle, error) {
	amount := grossAmount(req.Amount)
	order := orderID(req.GuestID)
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order,
			GrossAmt: amount,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.TicketNumber,
			Name:  truncate(req.Description, 50),
			Price: amount,
			Qty:   1,
		}},
		CustomField1: req.GuestID,
	}
	if req.CustomerEmail != "" || req.CustomerName != "" {
		sr.CustomerDetail = &midtrans.CustomerDetails{FName: req.CustomerName, Email: req.CustomerEmail}
	}

	resp, merr := g.client.CreateTransaction(sr)
	if merr != nil {
		return nil, unavailable(ProviderMidtrans, fmt.Errorf("create transaction: %s", merr.Message))
	}
	return &domain.PaymentHandle{PaymentID: order, ConfirmationURL: resp.RedirectURL, ClientToken: resp.Token}, nil
}

type midtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	TransactionID     string `json:"transaction_id"`
	CustomField1      string `json:"custom_field1"`
}

// signature is SHA512(order_id + status_code + gross_amount + server_key), hex encoded.
func (g *midtransGateway) signature(n *midtransNotification) string {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + g.serverKey))
	return hex.EncodeToString(sum[:])
}

func (g *midtransGateway) VerifyNotification(ctx context.Context, headers map[string][]string, body []byte) (*domain.PaymentOutcome, error) {
	var n midtransNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	got := strings.ToLower(n.SignatureKey)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(g.signature(&n))) != 1 {
		return nil, domain.ErrInvalidSignature
	}

	// custom_field1 is outside the signature, so the guest comes from order_id.
	guestID := guestFromOrder(n.OrderID)
	if _, err := uuid.Parse(guestID); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	if n.CustomField1 != "" && n.CustomField1 != guestID {
		return nil, fmt.Errorf("%w: custom_field1 does not match order", domain.ErrInvalidSignature)
	}

	ref := n.TransactionID
	if ref == "" {
		ref = n.OrderID
	}
	return &domain.PaymentOutcome{EventType: midtransEventType(n.TransactionStatus, n.FraudStatus), GuestID: guestID, Reference: ref}, nil
}

// midtransEventType maps a Snap transaction status onto the lifecycle's two
// outcomes. Anything still in flight keeps its own name and is ignored.
func midtransEventType(status, fraud string) string {
	switch status {
	case "settlement":
		return domain.PaymentEventSucceeded
	case "capture":
		if fraud == "" || fraud == "accept" {
			return domain.PaymentEventSucceeded
		}
	case "cancel", "deny", "expire", "failure":
		return domain.PaymentEventCanceled
	}
	return "midtrans." + status
}

func guestFromOrder(order string) string {
	if i := strings.LastIndexByte(order, '-'); i > 0 {
		return order[:i]
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
