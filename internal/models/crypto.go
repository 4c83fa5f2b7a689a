package models

import (
	"encoding/json"
	"time"
)

const (
	TxTypePayment     = "payment"
	TxTypeTip         = "tip"
	TxTypeNFTPurchase = "nft_purchase"

	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"

	NFTStatusMinted = "minted"

	CurrencyETH = "ETH"
)

// ValidTxTypes список типов транзакций
var ValidTxTypes = map[string]struct{}{
	TxTypePayment:     {},
	TxTypeTip:         {},
	TxTypeNFTPurchase: {},
}

// ValidTxStatuses список статусов транзакций
var ValidTxStatuses = map[string]struct{}{
	TxStatusPending:   {},
	TxStatusConfirmed: {},
	TxStatusFailed:    {},
}

// Wallet - подключённый кошелёк пользователя. Не более одного на пользователя.
type Wallet struct {
	UserID      string    `db:"user_id" json:"user_id"`
	Address     string    `db:"address" json:"address"`
	ConnectedAt time.Time `db:"connected_at" json:"connected_at"`
}

// CryptoTransaction - запись о платеже, чаевых или покупке NFT.
type CryptoTransaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Type        string    `db:"type" json:"type"`
	Amount      string    `db:"amount" json:"amount"`
	Currency    string    `db:"currency" json:"currency"`
	FromAddress *string   `db:"from_address" json:"from_address,omitempty"`
	ToAddress   string    `db:"to_address" json:"to_address"`
	TxHash      *string   `db:"tx_hash" json:"tx_hash,omitempty"`
	PostID      *string   `db:"post_id" json:"post_id,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NFTAttribute - атрибут метаданных в формате OpenSea.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTMetadata - метаданные токена.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
	ExternalURL string         `json:"external_url"`
}

type NFT struct {
	ID              string          `db:"id" json:"id"`
	TokenID         int64           `db:"token_id" json:"token_id"`
	ContractAddress string          `db:"contract_address" json:"contract_address"`
	PostID          string          `db:"post_id" json:"post_id"`
	Metadata        json.RawMessage `db:"metadata" json:"metadata"`
	MetadataHash    string          `db:"metadata_hash" json:"metadata_hash"`
	MintedBy        string          `db:"minted_by" json:"minted_by"`
	MintedAt        time.Time       `db:"minted_at" json:"minted_at"`
	Price           string          `db:"price" json:"price"`
	Royalty         int             `db:"royalty" json:"royalty"`
	Collection      string          `db:"collection" json:"collection"`
	Status          string          `db:"status" json:"status"`
}
