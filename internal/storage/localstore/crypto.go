package localstore

import (
	"context"
	"fmt"

	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
)

// CryptoRepository хранит кошельки, транзакции и NFT.
type CryptoRepository struct {
	store *Store
}

func NewCryptoRepository(store *Store) *CryptoRepository {
	return &CryptoRepository{store: store}
}

// UpsertWallet заменяет кошелёк пользователя.
func (r *CryptoRepository) UpsertWallet(_ context.Context, wallet *models.Wallet) error {
	return mutate(r.store, KeyWallets, func(wallets *[]models.Wallet) error {
		kept := (*wallets)[:0]
		for _, w := range *wallets {
			if w.UserID != wallet.UserID {
				kept = append(kept, w)
			}
		}
		*wallets = append(kept, *wallet)
		return nil
	})
}

func (r *CryptoRepository) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	wallets, err := read[[]models.Wallet](r.store, KeyWallets)
	if err != nil {
		return nil, err
	}
	for i := range wallets {
		if wallets[i].UserID == userID {
			return &wallets[i], nil
		}
	}
	return nil, fmt.Errorf("wallet %s: %w", userID, common.ErrNotFound)
}

func (r *CryptoRepository) DeleteWallet(_ context.Context, userID string) error {
	return mutate(r.store, KeyWallets, func(wallets *[]models.Wallet) error {
		kept := (*wallets)[:0]
		for _, w := range *wallets {
			if w.UserID != userID {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(*wallets) {
			return fmt.Errorf("wallet %s: %w", userID, common.ErrNotFound)
		}
		*wallets = kept
		return nil
	})
}

func (r *CryptoRepository) CreateTransaction(_ context.Context, tx *models.CryptoTransaction) error {
	return mutate(r.store, KeyTransactions, func(txs *[]models.CryptoTransaction) error {
		*txs = append(*txs, *tx)
		return nil
	})
}

// ListTransactions возвращает транзакции пользователя, новые первыми.
func (r *CryptoRepository) ListTransactions(_ context.Context, userID string) ([]models.CryptoTransaction, error) {
	txs, err := read[[]models.CryptoTransaction](r.store, KeyTransactions)
	if err != nil {
		return nil, err
	}
	result := make([]models.CryptoTransaction, 0)
	for i := len(txs) - 1; i >= 0; i-- {
		if txs[i].UserID == userID {
			result = append(result, txs[i])
		}
	}
	return result, nil
}

// ListPendingTransactions возвращает ожидающие транзакции с известным хешем.
func (r *CryptoRepository) ListPendingTransactions(_ context.Context) ([]models.CryptoTransaction, error) {
	txs, err := read[[]models.CryptoTransaction](r.store, KeyTransactions)
	if err != nil {
		return nil, err
	}
	result := make([]models.CryptoTransaction, 0)
	for _, tx := range txs {
		if tx.Status == models.TxStatusPending && tx.TxHash != nil && *tx.TxHash != "" {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (r *CryptoRepository) UpdateTransactionStatus(_ context.Context, id, status string) error {
	return mutate(r.store, KeyTransactions, func(txs *[]models.CryptoTransaction) error {
		for i := range *txs {
			if (*txs)[i].ID == id {
				(*txs)[i].Status = status
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	})
}

// CreateNFT сохраняет NFT и присваивает ему следующий token_id.
func (r *CryptoRepository) CreateNFT(_ context.Context, nft *models.NFT) error {
	return mutate(r.store, KeyNFTs, func(nfts *[]models.NFT) error {
		var maxToken int64
		for _, n := range *nfts {
			if n.TokenID > maxToken {
				maxToken = n.TokenID
			}
		}
		nft.TokenID = maxToken + 1
		*nfts = append(*nfts, *nft)
		return nil
	})
}

// ListNFTs возвращает NFT, новые первыми.
func (r *CryptoRepository) ListNFTs(_ context.Context) ([]models.NFT, error) {
	nfts, err := read[[]models.NFT](r.store, KeyNFTs)
	if err != nil {
		return nil, err
	}
	result := make([]models.NFT, 0, len(nfts))
	for i := len(nfts) - 1; i >= 0; i-- {
		result = append(result, nfts[i])
	}
	return result, nil
}
