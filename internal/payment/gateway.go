package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// モックモードの参照に付くプレフィックス（検証時の分岐にも使う）
const MockRefPrefix = "mock_"

// 外部決済ゲートウェイの契約。coreが必要とするのはこの2つだけ。
type Gateway interface {
	// 支払いインテントを作り、外部参照を返す。amountは最小通貨単位。
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error)

	// クライアントが提出した署名を検証する。falseは改ざん/不一致。
	Verify(ctx context.Context, orderRef string, paymentRef string, proof string) (bool, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
	secret string
}

func NewRazorpayGateway(keyID string, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

func (g *RazorpayGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	notes := map[string]interface{}{}
	for k, v := range metadata {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"notes":    notes,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}

	ref, _ := body["id"].(string)
	return ref, nil
}

func (g *RazorpayGateway) Verify(ctx context.Context, orderRef string, paymentRef string, proof string) (bool, error) {
	if paymentRef == "" || proof == "" {
		return false, nil
	}

	params := map[string]interface{}{
		"razorpay_order_id":   orderRef,
		"razorpay_payment_id": paymentRef,
	}
	return utils.VerifyPaymentSignature(params, proof, g.secret), nil
}

// 資格情報なし環境向けの決定的モック。常に検証成功を返す。
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	return MockRefPrefix + uuid.NewString(), nil
}

func (g *MockGateway) Verify(ctx context.Context, orderRef string, paymentRef string, proof string) (bool, error) {
	return strings.HasPrefix(orderRef, MockRefPrefix), nil
}
