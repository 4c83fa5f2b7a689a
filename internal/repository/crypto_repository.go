package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// CryptoRepository работает с таблицами wallets, crypto_transactions и nfts.
type CryptoRepository struct {
	db *sqlx.DB
}

func NewCryptoRepository(db *sqlx.DB) *CryptoRepository {
	return &CryptoRepository{db: db}
}

// UpsertWallet заменяет кошелёк пользователя.
func (r *CryptoRepository) UpsertWallet(ctx context.Context, wallet *models.Wallet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, address, connected_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET address = EXCLUDED.address, connected_at = EXCLUDED.connected_at
	`, wallet.UserID, wallet.Address, wallet.ConnectedAt)
	if err != nil {
		return fmt.Errorf("crypto repository: upsert wallet %w", err)
	}
	return nil
}

func (r *CryptoRepository) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet, err := common.GetByField[models.Wallet](ctx, r.db, "wallets", "user_id", userID)
	if err != nil {
		return nil, fmt.Errorf("crypto repository: get wallet %w", err)
	}
	return wallet, nil
}

func (r *CryptoRepository) DeleteWallet(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("crypto repository: delete wallet %w", err)
	}
	return common.ExpectAffected(res, "crypto repository: delete wallet")
}

func (r *CryptoRepository) CreateTransaction(ctx context.Context, tx *models.CryptoTransaction) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO crypto_transactions (id, user_id, type, amount, currency, from_address, to_address, tx_hash, post_id, status, created_at)
		VALUES (:id, :user_id, :type, :amount, :currency, :from_address, :to_address, :tx_hash, :post_id, :status, :created_at)
	`, tx)
	if err != nil {
		return fmt.Errorf("crypto repository: create transaction %w", err)
	}
	return nil
}

func (r *CryptoRepository) ListTransactions(ctx context.Context, userID string) ([]models.CryptoTransaction, error) {
	txs := []models.CryptoTransaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM crypto_transactions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("crypto repository: list transactions %w", err)
	}
	return txs, nil
}

func (r *CryptoRepository) ListPendingTransactions(ctx context.Context) ([]models.CryptoTransaction, error) {
	txs := []models.CryptoTransaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT * FROM crypto_transactions
		WHERE status = 'pending' AND tx_hash IS NOT NULL AND tx_hash <> ''
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("crypto repository: list pending transactions %w", err)
	}
	return txs, nil
}

func (r *CryptoRepository) UpdateTransactionStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE crypto_transactions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("crypto repository: update transaction status %w", err)
	}
	return common.ExpectAffected(res, "crypto repository: update transaction status")
}

// CreateNFT сохраняет NFT, token_id выдаёт последовательность.
func (r *CryptoRepository) CreateNFT(ctx context.Context, nft *models.NFT) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO nfts (id, contract_address, post_id, metadata, metadata_hash, minted_by, minted_at, price, royalty, collection, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING token_id
	`, nft.ID, nft.ContractAddress, nft.PostID, []byte(nft.Metadata), nft.MetadataHash, nft.MintedBy,
		nft.MintedAt, nft.Price, nft.Royalty, nft.Collection, nft.Status).Scan(&nft.TokenID)
	if err != nil {
		return fmt.Errorf("crypto repository: create nft %w", err)
	}
	return nil
}

func (r *CryptoRepository) ListNFTs(ctx context.Context) ([]models.NFT, error) {
	nfts := []models.NFT{}
	if err := r.db.SelectContext(ctx, &nfts, `SELECT * FROM nfts ORDER BY token_id DESC`); err != nil {
		return nil, fmt.Errorf("crypto repository: list nfts %w", err)
	}
	return nfts, nil
}
