package exchange

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/hudgate/internal/signer"
	"github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CLOB submits orders to the Polymarket CLOB using a single process-wide
// signing key. API credentials are derived lazily from the key and cached;
// the derive call is idempotent on the exchange side.
type CLOB struct {
	host       string
	chainID    int64
	key        *ecdsa.PrivateKey
	address    common.Address
	sdkSigner  auth.Signer
	fastSigner *signer.Signer
	httpClient *http.Client

	mu     sync.Mutex
	apiKey *auth.APIKey
}

func NewCLOB(host string, chainID int64, privateKeyHex string) (*CLOB, error) {
	pk := strings.TrimPrefix(privateKeyHex, "0x")
	key, err := crypto.HexToECDSA(pk)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	sdkSigner, err := auth.NewPrivateKeySigner(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sdk signer: %w", err)
	}

	fastSigner, err := signer.NewSigner(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize order signer: %w", err)
	}

	return &CLOB{
		host:       strings.TrimSuffix(host, "/"),
		chainID:    chainID,
		key:        key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		sdkSigner:  sdkSigner,
		fastSigner: fastSigner,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: 10 * time.Second,
		},
	}, nil
}

// EnsureAPIKey makes sure the signing address has an L2 API credential,
// deriving an existing one or creating it on first use. Safe to call on
// every request; the credential is cached after the first success.
func (c *CLOB) EnsureAPIKey(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.apiKey != nil {
		return nil
	}

	creds, err := c.deriveOrCreateCreds(ctx)
	if err != nil {
		return err
	}
	c.apiKey = creds
	return nil
}

func (c *CLOB) SubmitOrder(ctx context.Context, order *Order) (interface{}, error) {
	if err := c.EnsureAPIKey(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	apiKey := c.apiKey
	c.mu.Unlock()

	client := polymarket.NewClient(
		polymarket.WithUseServerTime(true),
		polymarket.WithHTTPClient(c.httpClient),
	).WithAuth(c.sdkSigner, apiKey)

	side := "BUY"
	if order.Side == SideCodeNo {
		side = "SELL"
	}

	builder := clob.NewOrderBuilder(client.CLOB, c.sdkSigner).
		TokenID(order.TokenID).
		Price(order.Price).
		Size(order.Size).
		Side(side).
		OrderType(clobtypes.OrderTypeFAK)
	builder.PostOnly(order.PostOnly)

	signable, err := builder.BuildSignableWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build order: %w", err)
	}

	signature, err := c.fastSigner.SignOrder(toSignerOrder(signable.Order))
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	signed := &clobtypes.SignedOrder{
		Order:     *signable.Order,
		Signature: signature,
		Owner:     apiKey.Key,
		OrderType: signable.OrderType,
		PostOnly:  signable.PostOnly,
	}

	resp, err := client.CLOB.PostOrder(ctx, signed)
	if err != nil {
		return nil, fmt.Errorf("polymarket api error: %w", err)
	}
	return resp, nil
}

func toSignerOrder(o *clobtypes.Order) *signer.Order {
	side := uint8(0)
	if strings.ToUpper(o.Side) == "SELL" {
		side = 1
	}

	sigType := uint8(0)
	if o.SignatureType != nil {
		sigType = uint8(*o.SignatureType)
	}

	return &signer.Order{
		Salt:          o.Salt.Int,
		Maker:         o.Maker,
		Signer:        o.Signer,
		Taker:         o.Taker,
		TokenID:       o.TokenID.Int,
		MakerAmount:   o.MakerAmount.BigInt(),
		TakerAmount:   o.TakerAmount.BigInt(),
		Expiration:    o.Expiration.Int,
		Nonce:         o.Nonce.Int,
		FeeRateBps:    o.FeeRateBps.BigInt(),
		Side:          side,
		SignatureType: sigType,
	}
}

type apiCreds struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// deriveOrCreateCreds tries GET /auth/derive-api-key for existing
// credentials and falls back to POST /auth/api-key, authenticating both with
// L1 headers signed over the CLOB auth message.
func (c *CLOB) deriveOrCreateCreds(ctx context.Context) (*auth.APIKey, error) {
	timestamp := time.Now().Unix()
	nonce := int64(0)

	sig, err := c.signAuthMessage(timestamp, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to sign auth message: %w", err)
	}

	headers := map[string]string{
		"POLY_ADDRESS":   c.address.Hex(),
		"POLY_SIGNATURE": sig,
		"POLY_TIMESTAMP": strconv.FormatInt(timestamp, 10),
		"POLY_NONCE":     strconv.FormatInt(nonce, 10),
	}

	creds, err := c.requestCreds(ctx, http.MethodGet, c.host+"/auth/derive-api-key", headers)
	if err == nil {
		return creds, nil
	}

	return c.requestCreds(ctx, http.MethodPost, c.host+"/auth/api-key", headers)
}

func (c *CLOB) requestCreds(ctx context.Context, method, url string, headers map[string]string) (*auth.APIKey, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("credential request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("credential request failed %d: %s", resp.StatusCode, string(body))
	}

	var creds apiCreds
	if err := json.Unmarshal(body, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &auth.APIKey{
		Key:        creds.APIKey,
		Secret:     creds.Secret,
		Passphrase: creds.Passphrase,
	}, nil
}

// signAuthMessage signs the ClobAuthDomain attestation (EIP-712) that
// authorizes credential derivation for the signing address.
func (c *CLOB) signAuthMessage(timestamp, nonce int64) (string, error) {
	domainTypeHash := crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId)"))
	domainSeparator := crypto.Keccak256Hash(
		domainTypeHash.Bytes(),
		crypto.Keccak256Hash([]byte("ClobAuthDomain")).Bytes(),
		crypto.Keccak256Hash([]byte("1")).Bytes(),
		common.LeftPadBytes(big.NewInt(c.chainID).Bytes(), 32),
	)

	authTypeHash := crypto.Keccak256Hash([]byte("ClobAuth(address address,string timestamp,uint256 nonce,string message)"))
	structHash := crypto.Keccak256Hash(
		authTypeHash.Bytes(),
		common.LeftPadBytes(c.address.Bytes(), 32),
		crypto.Keccak256Hash([]byte(strconv.FormatInt(timestamp, 10))).Bytes(),
		common.LeftPadBytes(big.NewInt(nonce).Bytes(), 32),
		crypto.Keccak256Hash([]byte("This message attests that I control the given wallet")).Bytes(),
	)

	hash := crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())

	sig, err := crypto.Sign(hash.Bytes(), c.key)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return "0x" + common.Bytes2Hex(sig), nil
}
