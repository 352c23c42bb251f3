package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs exchange orders with a pre-calculated EIP-712 domain
// separator, avoiding per-order typed-data reflection.
type Signer struct {
	key             *ecdsa.PrivateKey
	address         common.Address
	chainID         *big.Int
	domainSeparator common.Hash
}

func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}
	address := crypto.PubkeyToAddress(*publicKey)

	// domainSeparator = keccak256(abi.encode(typeHash, nameHash, versionHash,
	// chainId, verifyingContract)); all fields are 32 bytes.
	domainData := make([]byte, 32*5)
	copy(domainData[0:32], EIP712DomainTypeHash.Bytes())
	copy(domainData[32:64], crypto.Keccak256Hash([]byte(EIP712DomainName)).Bytes())
	copy(domainData[64:96], crypto.Keccak256Hash([]byte(EIP712DomainVersion)).Bytes())
	copy(domainData[96:128], math.U256Bytes(big.NewInt(chainID)))
	copy(domainData[128+12:160], common.HexToAddress(ExchangeContractAddress).Bytes())

	return &Signer{
		key:             key,
		address:         address,
		chainID:         big.NewInt(chainID),
		domainSeparator: crypto.Keccak256Hash(domainData),
	}, nil
}

// SignOrder hashes the order per EIP-712 and signs it, returning a 65-byte
// hex signature with V adjusted to 27/28.
func (s *Signer) SignOrder(order *Order) (string, error) {
	hashStruct, err := s.hashOrder(order)
	if err != nil {
		return "", err
	}

	finalHash := crypto.Keccak256([]byte{0x19, 0x01}, s.domainSeparator.Bytes(), hashStruct)

	signature, err := crypto.Sign(finalHash, s.key)
	if err != nil {
		return "", err
	}
	if signature[64] < 27 {
		signature[64] += 27
	}

	return "0x" + common.Bytes2Hex(signature), nil
}

// hashOrder computes hashStruct(order): typeHash plus 12 fields, 32 bytes
// each, ABI-encoded by hand.
func (s *Signer) hashOrder(order *Order) ([]byte, error) {
	data := make([]byte, 32*13)

	copy(data[0:32], OrderTypeHash.Bytes())
	if order.Salt != nil {
		copy(data[32:64], math.U256Bytes(order.Salt))
	}
	copy(data[64+12:96], order.Maker.Bytes())
	copy(data[96+12:128], order.Signer.Bytes())
	copy(data[128+12:160], order.Taker.Bytes())
	if order.TokenID != nil {
		copy(data[160:192], math.U256Bytes(order.TokenID))
	}
	if order.MakerAmount != nil {
		copy(data[192:224], math.U256Bytes(order.MakerAmount))
	}
	if order.TakerAmount != nil {
		copy(data[224:256], math.U256Bytes(order.TakerAmount))
	}
	if order.Expiration != nil {
		copy(data[256:288], math.U256Bytes(order.Expiration))
	}
	if order.Nonce != nil {
		copy(data[288:320], math.U256Bytes(order.Nonce))
	}
	if order.FeeRateBps != nil {
		copy(data[320:352], math.U256Bytes(order.FeeRateBps))
	}
	copy(data[352:384], math.U256Bytes(big.NewInt(int64(order.Side))))
	copy(data[384:416], math.U256Bytes(big.NewInt(int64(order.SignatureType))))

	return crypto.Keccak256(data), nil
}

func (s *Signer) Address() common.Address {
	return s.address
}
