package crypto

import (
	"fmt"
	"os"

	"github.com/calehh/capsule-app/addr"
	"github.com/calehh/capsule-app/tx"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtjson "github.com/cometbft/cometbft/libs/json"
	"github.com/cometbft/cometbft/privval"
)

// PV is a wallet key kept in the cometbft private validator key format, so
// a node's priv_validator_key.json can sign transactions as well.
type PV struct {
	privateKey crypto.PrivKey
	publicKey  crypto.PubKey
}

func NewPV(priv crypto.PrivKey) *PV {
	return &PV{privateKey: priv, publicKey: priv.PubKey()}
}

func LoadFilePV(keyFilePath string) (*PV, error) {
	keyJSONBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	pvKey := privval.FilePVKey{}
	err = cmtjson.Unmarshal(keyJSONBytes, &pvKey)
	if err != nil {
		return nil, fmt.Errorf("error reading key from %v: %w", keyFilePath, err)
	}
	if pvKey.PrivKey == nil || pvKey.PrivKey.Type() != ed25519.KeyType {
		return nil, fmt.Errorf("key %v is not an ed25519 key", keyFilePath)
	}
	return NewPV(pvKey.PrivKey), nil
}

// GenFilePV writes a fresh key to keyFilePath. An existing file is kept.
func GenFilePV(keyFilePath string) (*PV, error) {
	if _, err := os.Stat(keyFilePath); err == nil {
		return nil, fmt.Errorf("key file %v already exists", keyFilePath)
	}
	pv := NewPV(ed25519.GenPrivKey())
	dat, err := cmtjson.MarshalIndent(privval.FilePVKey{
		Address: pv.publicKey.Address(),
		PubKey:  pv.publicKey,
		PrivKey: pv.privateKey,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(keyFilePath, dat, 0o600); err != nil {
		return nil, err
	}
	return pv, nil
}

func (k *PV) PublicKey() []byte {
	return k.publicKey.Bytes()
}

// Address is the wallet address, the raw public key.
func (k *PV) Address() addr.Address {
	return addr.BytesToAddress(k.publicKey.Bytes())
}

func (k *PV) Sign(data []byte) ([]byte, error) {
	return k.privateKey.Sign(data)
}

// SignTx sets the signer of btx to this key and signs it for chainId.
func (k *PV) SignTx(btx *tx.CapsuleTx, chainId string) error {
	btx.Signer = k.Address()
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		return err
	}
	sig, err := k.Sign(dat)
	if err != nil {
		return err
	}
	btx.Sig = [][]byte{sig}
	return nil
}
