package app

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/models"
)

const recipient = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryChain minimal ledger behind the full HTTP stack
type memoryChain struct {
	mu       sync.Mutex
	signer   common.Address
	balances map[common.Address]*big.Int
	nonce    uint64
}

func (m *memoryChain) NetworkIdentity(context.Context) (*models.NetworkIdentity, error) {
	return &models.NetworkIdentity{ChainID: 137, Name: "matic"}, nil
}

func (m *memoryChain) BalanceOf(_ context.Context, holder common.Address, _ *big.Int) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[holder]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (m *memoryChain) NativeBalance(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(1e18), nil
}

func (m *memoryChain) SignerAddress(context.Context) (common.Address, error) {
	return m.signer, nil
}

func (m *memoryChain) SuggestedFees(context.Context) (*models.FeeQuote, error) {
	return nil, nil
}

func (m *memoryChain) SimulateTransfer(context.Context, common.Address, common.Address, *big.Int, *big.Int) (*models.SimulationOutcome, error) {
	return &models.SimulationOutcome{OK: true}, nil
}

func (m *memoryChain) SubmitTransfer(_ context.Context, from, to common.Address, _ *big.Int, amount *big.Int, _ models.FeeQuote) (*models.TransactionHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[from] = new(big.Int).Sub(m.balances[from], amount)
	if m.balances[to] == nil {
		m.balances[to] = new(big.Int)
	}
	m.balances[to].Add(m.balances[to], amount)
	m.nonce++
	return &models.TransactionHandle{Hash: common.BigToHash(new(big.Int).SetUint64(m.nonce)), Nonce: m.nonce}, nil
}

func (m *memoryChain) AwaitInclusion(context.Context, models.TransactionHandle, uint64, time.Duration) bool {
	return true
}

func newTestContainer(t *testing.T, jwtSecret string) (*ServiceContainer, *memoryChain) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := crypto.PubkeyToAddress(key.PublicKey)

	yaml := `
dispenser:
  rpcEndpoint: "http://127.0.0.1:8545"
  privateKey: "` + hex.EncodeToString(crypto.FromECDSA(key)) + `"
  contractAddress: "0x2222222222222222222222222222222222222222"
  treasuryAddress: "` + signer.Hex() + `"
  tokenId: "7"
  monitorInterval: -1
admin:
  jwtSecret: "` + jwtSecret + `"
`
	cfg, err := config.ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	dispenser, err := cfg.Dispenser.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	chain := &memoryChain{
		signer:   signer,
		balances: map[common.Address]*big.Int{signer: big.NewInt(3)},
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	container, err := NewServiceContainer(cfg, dispenser, chain, logger)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return container, chain
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "127.0.0.1:40000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDisburseEndToEnd(t *testing.T) {
	container, chain := newTestContainer(t, "")
	defer container.Close()
	r := container.Router()

	for _, path := range []string{"/api/disburse", "/.netlify/functions/transfer1155"} {
		w := serve(r, http.MethodPost, path, `{"to":"`+strings.ToLower(recipient)+`"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}

	// first call sends, second finds the recipient already served
	bal, _ := chain.BalanceOf(context.Background(), common.HexToAddress(recipient), nil)
	if bal.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected recipient balance 1, got %s", bal)
	}
	if chain.nonce != 1 {
		t.Fatalf("expected one submission, got %d", chain.nonce)
	}

	w := serve(r, http.MethodPost, "/api/disburse", `{"to":"`+recipient+`"}`, nil)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "already" || body["ok"] != true {
		t.Fatalf("expected already, got %v", body)
	}
}

func TestDisburseInvalidRecipient(t *testing.T) {
	container, chain := newTestContainer(t, "")
	defer container.Close()

	w := serve(container.Router(), http.MethodPost, "/api/disburse", `{"to":"0x123"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if chain.nonce != 0 {
		t.Fatal("expected no submission")
	}
}

func TestRouterEdges(t *testing.T) {
	container, _ := newTestContainer(t, "")
	defer container.Close()
	r := container.Router()

	if w := serve(r, http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/disburse", "", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET disburse: expected 405, got %d", w.Code)
	}
	w := serve(r, http.MethodOptions, "/api/disburse", "", map[string]string{"Origin": "https://claim.example"})
	if w.Code != http.StatusOK {
		t.Fatalf("preflight: expected 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: unexpected allow-origin %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w := serve(r, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", w.Code)
	}
	// admin API is not mounted without a secret
	if w := serve(r, http.MethodGet, "/api/admin/treasury", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("admin without secret: expected 404, got %d", w.Code)
	}
}

func TestAdminTreasury(t *testing.T) {
	container, _ := newTestContainer(t, "admin-secret")
	defer container.Close()
	r := container.Router()

	if w := serve(r, http.MethodGet, "/api/admin/treasury", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, err := container.AdminTokens.GenerateAdminJWTToken("ops", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := serve(r, http.MethodGet, "/api/admin/treasury", "", map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success  bool                    `json:"success"`
		Treasury models.TreasurySnapshot `json:"treasury"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !body.Success || !body.Treasury.SignerMatchesTreasury || body.Treasury.RemainingDisbursements != "3" {
		t.Fatalf("unexpected snapshot %s", w.Body.String())
	}
}
