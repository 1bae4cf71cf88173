// Package marketdb persists the marketplace engine state in a bbolt database:
// the dense sale arena, the native balance table, allow-list membership and
// the admin owner. It satisfies both the engine's State interface and the
// allow-list's persistence hook.
package marketdb

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	bolt "go.etcd.io/bbolt"

	"nftmarket/native/market"
)

var (
	bucketSales     = []byte("sales")
	bucketNative    = []byte("native")
	bucketAllowlist = []byte("allowlist")
	bucketMeta      = []byte("meta")

	keyOwner = []byte("owner")

	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("marketdb: store closed")
)

// Store is a bbolt-backed engine state.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the database at path and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("marketdb: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSales, bucketNative, bucketAllowlist, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// storedSale is the JSON shape persisted per record. Addresses are hex and
// amounts decimal strings so the payload stays readable in dumps.
type storedSale struct {
	Index        uint64 `json:"index"`
	Kind         uint8  `json:"kind"`
	Collection   string `json:"collection"`
	PaymentAsset string `json:"paymentAsset"`
	AssetID      string `json:"assetId"`
	Seller       string `json:"seller"`
	Status       uint8  `json:"status"`
	CreatedAt    int64  `json:"createdAt"`
	Price        string `json:"price,omitempty"`
	BidPrice     string `json:"bidPrice,omitempty"`
	Bidder       string `json:"bidder,omitempty"`
	BidCount     uint32 `json:"bidCount,omitempty"`
	EndTime      int64  `json:"endTime,omitempty"`
	StartPrice   string `json:"startPrice,omitempty"`
	EndPrice     string `json:"endPrice,omitempty"`
	StartTime    int64  `json:"startTime,omitempty"`
	Period       int64  `json:"period,omitempty"`
}

func encodeAddr(addr [20]byte) string { return hex.EncodeToString(addr[:]) }

func decodeAddr(raw string) ([20]byte, error) {
	var addr [20]byte
	decoded, err := hex.DecodeString(raw)
	if err != nil || len(decoded) != len(addr) {
		return addr, fmt.Errorf("marketdb: bad address %q", raw)
	}
	copy(addr[:], decoded)
	return addr, nil
}

func encodeAmount(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func decodeAmount(raw string) (*big.Int, error) {
	if raw == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("marketdb: bad amount %q", raw)
	}
	return v, nil
}

func encodeSale(rec *market.SaleRecord) ([]byte, error) {
	stored := storedSale{
		Index:        rec.Index,
		Kind:         uint8(rec.Kind),
		Collection:   encodeAddr(rec.Collection),
		PaymentAsset: encodeAddr(rec.PaymentAsset),
		AssetID:      encodeAmount(rec.AssetID),
		Seller:       encodeAddr(rec.Seller),
		Status:       uint8(rec.Status),
		CreatedAt:    rec.CreatedAt,
		Price:        encodeAmount(rec.Price),
		BidPrice:     encodeAmount(rec.BidPrice),
		BidCount:     rec.BidCount,
		EndTime:      rec.EndTime,
		StartPrice:   encodeAmount(rec.StartPrice),
		EndPrice:     encodeAmount(rec.EndPrice),
		StartTime:    rec.StartTime,
		Period:       rec.Period,
	}
	if rec.Bidder != nil {
		stored.Bidder = encodeAddr(*rec.Bidder)
	}
	return json.Marshal(stored)
}

func decodeSale(raw []byte) (*market.SaleRecord, error) {
	var stored storedSale
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	rec := &market.SaleRecord{
		Index:     stored.Index,
		Kind:      market.SaleKind(stored.Kind),
		Status:    market.SaleStatus(stored.Status),
		CreatedAt: stored.CreatedAt,
		BidCount:  stored.BidCount,
		EndTime:   stored.EndTime,
		StartTime: stored.StartTime,
		Period:    stored.Period,
	}
	var err error
	if rec.Collection, err = decodeAddr(stored.Collection); err != nil {
		return nil, err
	}
	if rec.PaymentAsset, err = decodeAddr(stored.PaymentAsset); err != nil {
		return nil, err
	}
	if rec.Seller, err = decodeAddr(stored.Seller); err != nil {
		return nil, err
	}
	if rec.AssetID, err = decodeAmount(stored.AssetID); err != nil {
		return nil, err
	}
	if rec.Price, err = decodeAmount(stored.Price); err != nil {
		return nil, err
	}
	if rec.BidPrice, err = decodeAmount(stored.BidPrice); err != nil {
		return nil, err
	}
	if rec.StartPrice, err = decodeAmount(stored.StartPrice); err != nil {
		return nil, err
	}
	if rec.EndPrice, err = decodeAmount(stored.EndPrice); err != nil {
		return nil, err
	}
	if stored.Bidder != "" {
		bidder, err := decodeAddr(stored.Bidder)
		if err != nil {
			return nil, err
		}
		rec.Bidder = &bidder
	}
	return rec, nil
}

func indexKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

// SaleAppend assigns the next dense index and stores the record.
func (s *Store) SaleAppend(rec *market.SaleRecord) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	if rec == nil {
		return 0, fmt.Errorf("marketdb: nil sale record")
	}
	var index uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSales)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		index = seq - 1
		rec.Index = index
		raw, err := encodeSale(rec)
		if err != nil {
			return err
		}
		return bucket.Put(indexKey(index), raw)
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// SaleGet returns the record at index.
func (s *Store) SaleGet(index uint64) (*market.SaleRecord, bool) {
	if s == nil || s.db == nil {
		return nil, false
	}
	var rec *market.SaleRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSales).Get(indexKey(index))
		if raw == nil {
			return nil
		}
		decoded, err := decodeSale(raw)
		if err != nil {
			return err
		}
		rec = decoded
		return nil
	})
	if err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

// SalePut overwrites an existing record. The index must have been assigned by
// SaleAppend.
func (s *Store) SalePut(rec *market.SaleRecord) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if rec == nil {
		return fmt.Errorf("marketdb: nil sale record")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSales)
		if bucket.Get(indexKey(rec.Index)) == nil {
			return fmt.Errorf("marketdb: unknown sale index %d", rec.Index)
		}
		raw, err := encodeSale(rec)
		if err != nil {
			return err
		}
		return bucket.Put(indexKey(rec.Index), raw)
	})
}

// SaleCount returns the number of records ever created.
func (s *Store) SaleCount() uint64 {
	if s == nil || s.db == nil {
		return 0
	}
	var count uint64
	_ = s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketSales).Sequence()
		return nil
	})
	return count
}

// NativeBalance returns the native value held by an account.
func (s *Store) NativeBalance(addr [20]byte) (*big.Int, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	balance := big.NewInt(0)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketNative).Get(addr[:])
		if raw == nil {
			return nil
		}
		decoded, err := decodeAmount(string(raw))
		if err != nil {
			return err
		}
		balance = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// SetNativeBalance overwrites the native value held by an account.
func (s *Store) SetNativeBalance(addr [20]byte, amount *big.Int) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("marketdb: negative native balance")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNative).Put(addr[:], []byte(amount.String()))
	})
}

func allowlistKey(kind market.ContractKind, addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s/%s", kind, encodeAddr(addr)))
}

// AllowlistPut records allow-list membership.
func (s *Store) AllowlistPut(kind market.ContractKind, addr [20]byte) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAllowlist).Put(allowlistKey(kind, addr), []byte{1})
	})
}

// AllowlistDelete removes allow-list membership. Deleting an unknown address
// succeeds.
func (s *Store) AllowlistDelete(kind market.ContractKind, addr [20]byte) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAllowlist).Delete(allowlistKey(kind, addr))
	})
}

// AllowlistAddresses lists the persisted members for one table, so a daemon
// can re-bind contract instances at boot.
func (s *Store) AllowlistAddresses(kind market.ContractKind) ([][20]byte, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	prefix := []byte(fmt.Sprintf("%s/", kind))
	var out [][20]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucketAllowlist).Cursor()
		for k, _ := cursor.Seek(prefix); k != nil && len(k) > len(prefix) && string(k[:len(prefix)]) == string(prefix); k, _ = cursor.Next() {
			addr, err := decodeAddr(string(k[len(prefix):]))
			if err != nil {
				return err
			}
			out = append(out, addr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OwnerPut records the admin principal.
func (s *Store) OwnerPut(addr [20]byte) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyOwner, addr[:])
	})
}

// OwnerGet returns the persisted admin principal, false when none was stored.
func (s *Store) OwnerGet() ([20]byte, bool, error) {
	if s == nil || s.db == nil {
		return [20]byte{}, false, ErrClosed
	}
	var addr [20]byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyOwner)
		if len(raw) != len(addr) {
			return nil
		}
		copy(addr[:], raw)
		found = true
		return nil
	})
	if err != nil {
		return [20]byte{}, false, err
	}
	return addr, found, nil
}
