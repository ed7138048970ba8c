// Package ethverify recovers the signer of an EIP-191 personal_sign message
// and compares it to the claimed wallet address.
package ethverify

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type Verifier struct{}

func New() Verifier { return Verifier{} }

func (Verifier) Verify(address, message, signature string) bool {
	if !common.IsHexAddress(address) {
		return false
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}

	// Wallets emit V as 27/28; crypto.SigToPub wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		zap.L().Debug("Signature recovery failed", zap.Error(err))
		return false
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), address)
}
