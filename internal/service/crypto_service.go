package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/ignatzorin/roastblame-backend/internal/ids"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/metrics"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/pkg/apperror"
	"github.com/ignatzorin/roastblame-backend/internal/repository/common"
	"github.com/ignatzorin/roastblame-backend/internal/validation"
	"github.com/ignatzorin/roastblame-backend/internal/wallet"
)

const (
	defaultNFTImage      = "https://via.placeholder.com/400x400?text=RoastBlame+NFT"
	defaultNFTCollection = "RoastBlame Roasts"
	defaultExternalURL   = "https://roastblame.com/post/"
)

// CryptoRepository - кошельки, транзакции и NFT.
type CryptoRepository interface {
	UpsertWallet(ctx context.Context, wallet *models.Wallet) error
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, userID string) error
	CreateTransaction(ctx context.Context, tx *models.CryptoTransaction) error
	ListTransactions(ctx context.Context, userID string) ([]models.CryptoTransaction, error)
	ListPendingTransactions(ctx context.Context) ([]models.CryptoTransaction, error)
	UpdateTransactionStatus(ctx context.Context, id, status string) error
	CreateNFT(ctx context.Context, nft *models.NFT) error
	ListNFTs(ctx context.Context) ([]models.NFT, error)
}

// WalletProvider - Ethereum JSON-RPC провайдер.
type WalletProvider interface {
	Configured() bool
	Accounts(ctx context.Context) ([]string, error)
	RequestAccounts(ctx context.Context) ([]string, error)
	Balance(ctx context.Context, address string) (*uint256.Int, error)
	SendTransaction(ctx context.Context, tx wallet.TxRequest) (string, error)
	TransactionReceipt(ctx context.Context, hash string) (*wallet.Receipt, error)
}

// CryptoConfig - параметры NFT.
type CryptoConfig struct {
	ContractAddress string
	ExternalURLBase string
}

// WalletInfo - кошелёк с балансом. Balance пустой, если провайдер не ответил.
type WalletInfo struct {
	models.Wallet
	Balance  *string `json:"balance"`
	Currency string  `json:"currency"`
}

// RecordTransactionInput - транзакция, совершённая вне сервиса.
type RecordTransactionInput struct {
	Type        string
	Amount      string
	Currency    string
	FromAddress *string
	ToAddress   string
	TxHash      *string
	PostID      *string
	Status      string
}

// TipInput - чаевые автору поста или на произвольный адрес.
type TipInput struct {
	PostID    string
	ToAddress string
	Amount    string
}

// MintNFTInput - параметры выпуска NFT по посту.
type MintNFTInput struct {
	PostID      string
	Name        string
	Description string
	Price       string
	Royalty     int
	Collection  string
}

// CryptoService - кошельки, чаевые и NFT.
type CryptoService struct {
	repo     CryptoRepository
	posts    PostReader
	logs     AdminLogWriter
	provider WalletProvider
	cfg      CryptoConfig
	now      func() time.Time
}

func NewCryptoService(repo CryptoRepository, posts PostReader, logs AdminLogWriter, provider WalletProvider, cfg CryptoConfig) *CryptoService {
	if cfg.ContractAddress == "" {
		// Детерминированный адрес для демо-контракта
		cfg.ContractAddress = wallet.ChecksumAddress("0x" + wallet.Keccak256Hex([]byte("roastblame-nft"))[26:])
	}
	if cfg.ExternalURLBase == "" {
		cfg.ExternalURLBase = defaultExternalURL
	}
	return &CryptoService{
		repo:     repo,
		posts:    posts,
		logs:     logs,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ConnectWallet привязывает кошелёк к пользователю, заменяя предыдущий.
// Без адреса запрашивает первый аккаунт у провайдера.
func (s *CryptoService) ConnectWallet(ctx context.Context, actor models.Actor, address string) (*models.Wallet, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}

	address = strings.TrimSpace(address)
	if address == "" {
		if err := s.requireProvider(); err != nil {
			return nil, err
		}
		accounts, err := s.providerAccounts(ctx)
		if err != nil {
			return nil, err
		}
		address = accounts[0]
	}

	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return nil, apperror.Validation(err)
	}

	w := &models.Wallet{
		UserID:      actor.UserID,
		Address:     normalized,
		ConnectedAt: s.now(),
	}
	if err := s.repo.UpsertWallet(ctx, w); err != nil {
		return nil, storageError(err, nil)
	}
	return w, nil
}

// providerAccounts сначала берёт уже разрешённые аккаунты (eth_accounts)
// и только при их отсутствии запрашивает доступ (eth_requestAccounts).
func (s *CryptoService) providerAccounts(ctx context.Context) ([]string, error) {
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		logger.L().WithError(err).Debug("crypto service: eth_accounts недоступен, запрашиваем доступ")
	}
	if len(accounts) > 0 {
		return accounts, nil
	}

	accounts, err = s.provider.RequestAccounts(ctx)
	if err != nil {
		return nil, providerError(err)
	}
	if len(accounts) == 0 {
		return nil, apperror.New(apperror.ErrCodeUpstream, "провайдер не вернул ни одного аккаунта")
	}
	return accounts, nil
}

func (s *CryptoService) DisconnectWallet(ctx context.Context, actor models.Actor) error {
	if actor.UserID == "" {
		return apperror.ErrUnauthorized
	}
	if err := s.repo.DeleteWallet(ctx, actor.UserID); err != nil {
		return storageError(err, apperror.ErrWalletNotFound)
	}
	return nil
}

// GetWallet возвращает кошелёк и баланс в ETH.
func (s *CryptoService) GetWallet(ctx context.Context, actor models.Actor) (*WalletInfo, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	w, err := s.repo.GetWallet(ctx, actor.UserID)
	if err != nil {
		return nil, storageError(err, apperror.ErrWalletNotFound)
	}

	info := &WalletInfo{Wallet: *w, Currency: models.CurrencyETH}
	if s.provider != nil && s.provider.Configured() {
		wei, err := s.provider.Balance(ctx, w.Address)
		if err != nil {
			logger.L().WithError(err).WithField("address", w.Address).Warn("crypto service: не удалось получить баланс")
		} else {
			balance := wallet.FormatEther(wei)
			info.Balance = &balance
		}
	}
	return info, nil
}

// RecordTransaction сохраняет транзакцию, отправленную клиентом самостоятельно.
func (s *CryptoService) RecordTransaction(ctx context.Context, actor models.Actor, in RecordTransactionInput) (*models.CryptoTransaction, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	if _, ok := models.ValidTxTypes[in.Type]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый тип транзакции")
	}
	if in.Status == "" {
		in.Status = models.TxStatusPending
	}
	if _, ok := models.ValidTxStatuses[in.Status]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус транзакции")
	}
	if in.Currency == "" {
		in.Currency = models.CurrencyETH
	}
	amount, err := parsePositiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	to, err := wallet.NormalizeAddress(in.ToAddress)
	if err != nil {
		return nil, apperror.Validation(err)
	}

	tx := &models.CryptoTransaction{
		ID:        ids.New(models.PrefixTransaction),
		UserID:    actor.UserID,
		Type:      in.Type,
		Amount:    wallet.FormatEther(amount),
		Currency:  strings.ToUpper(in.Currency),
		ToAddress: to,
		TxHash:    in.TxHash,
		PostID:    in.PostID,
		Status:    in.Status,
		CreatedAt: s.now(),
	}
	if in.FromAddress != nil {
		from, err := wallet.NormalizeAddress(*in.FromAddress)
		if err != nil {
			return nil, apperror.Validation(err)
		}
		tx.FromAddress = &from
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, storageError(err, nil)
	}
	metrics.CryptoTransactions.WithLabelValues(tx.Type, tx.Status).Inc()
	return tx, nil
}

// SendTip отправляет ETH с кошелька пользователя и записывает pending транзакцию.
func (s *CryptoService) SendTip(ctx context.Context, actor models.Actor, in TipInput) (*models.CryptoTransaction, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	amount, err := parsePositiveAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	from, err := s.repo.GetWallet(ctx, actor.UserID)
	if err != nil {
		return nil, storageError(err, apperror.ErrWalletNotFound)
	}

	var to string
	var postID *string
	switch {
	case in.PostID != "":
		post, err := s.posts.GetByID(ctx, in.PostID)
		if err != nil {
			return nil, storageError(err, apperror.ErrPostNotFound)
		}
		if post.IsDeleted() {
			return nil, apperror.ErrPostNotFound
		}
		authorWallet, err := s.repo.GetWallet(ctx, post.AuthorID)
		if err != nil {
			return nil, storageError(err, apperror.New(apperror.ErrCodeValidation, "автор поста не подключил кошелёк"))
		}
		to = authorWallet.Address
		id := post.ID
		postID = &id
	case in.ToAddress != "":
		to, err = wallet.NormalizeAddress(in.ToAddress)
		if err != nil {
			return nil, apperror.Validation(err)
		}
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, "нужен пост или адрес получателя")
	}
	if strings.EqualFold(to, from.Address) {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя отправить чаевые самому себе")
	}

	if err := s.requireProvider(); err != nil {
		return nil, err
	}
	hash, err := s.provider.SendTransaction(ctx, wallet.TxRequest{
		From:  from.Address,
		To:    to,
		Value: amount.Hex(),
		Gas:   wallet.TransferGas,
	})
	if err != nil {
		return nil, providerError(err)
	}

	fromAddr := from.Address
	tx := &models.CryptoTransaction{
		ID:          ids.New(models.PrefixTransaction),
		UserID:      actor.UserID,
		Type:        models.TxTypeTip,
		Amount:      wallet.FormatEther(amount),
		Currency:    models.CurrencyETH,
		FromAddress: &fromAddr,
		ToAddress:   to,
		TxHash:      &hash,
		PostID:      postID,
		Status:      models.TxStatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		// Перевод уже ушёл в сеть, поэтому запись теряется только в хранилище
		logger.L().WithError(err).WithField("tx_hash", hash).Error("crypto service: не удалось записать чаевые")
		return nil, storageError(err, nil)
	}

	metrics.CryptoTransactions.WithLabelValues(tx.Type, tx.Status).Inc()
	logger.L().WithFields(map[string]interface{}{
		"user_id": actor.UserID,
		"tx_hash": hash,
		"amount":  tx.Amount,
	}).Info("crypto service: отправлены чаевые")
	return tx, nil
}

// ListTransactions возвращает транзакции пользователя, новые первыми.
func (s *CryptoService) ListTransactions(ctx context.Context, actor models.Actor) ([]models.CryptoTransaction, error) {
	if actor.UserID == "" {
		return nil, apperror.ErrUnauthorized
	}
	txs, err := s.repo.ListTransactions(ctx, actor.UserID)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return txs, nil
}

// ConfirmPending проверяет квитанции ожидающих транзакций.
// Возвращает число транзакций, сменивших статус.
func (s *CryptoService) ConfirmPending(ctx context.Context) (int, error) {
	if s.provider == nil || !s.provider.Configured() {
		return 0, nil
	}
	pending, err := s.repo.ListPendingTransactions(ctx)
	if err != nil {
		return 0, storageError(err, nil)
	}

	updated := 0
	for _, tx := range pending {
		if tx.TxHash == nil {
			continue
		}
		receipt, err := s.provider.TransactionReceipt(ctx, *tx.TxHash)
		if err != nil {
			logger.L().WithError(err).WithField("tx_id", tx.ID).Warn("crypto service: не удалось получить квитанцию")
			continue
		}
		if receipt == nil {
			continue
		}

		status := models.TxStatusFailed
		if receipt.Succeeded() {
			status = models.TxStatusConfirmed
		}
		if err := s.repo.UpdateTransactionStatus(ctx, tx.ID, status); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return updated, storageError(err, nil)
		}
		metrics.CryptoTransactions.WithLabelValues(tx.Type, status).Inc()
		updated++
	}
	return updated, nil
}

// MintNFT записывает выпуск NFT по посту. Реального минтинга нет.
func (s *CryptoService) MintNFT(ctx context.Context, actor models.Actor, in MintNFTInput) (*models.NFT, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateNFT(in.Name, in.Royalty); err != nil {
		return nil, apperror.Validation(err)
	}
	price, err := parsePositiveAmount(in.Price)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, storageError(err, apperror.ErrPostNotFound)
	}
	if post.IsDeleted() {
		return nil, apperror.ErrPostNotFound
	}

	image := defaultNFTImage
	if post.ImageURL != nil {
		image = *post.ImageURL
	}
	metadata := models.NFTMetadata{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Image:       image,
		Attributes: []models.NFTAttribute{
			{TraitType: "Post ID", Value: post.ID},
			{TraitType: "Creator", Value: post.AuthorID},
			{TraitType: "Celebrity", Value: post.CelebrityName},
			{TraitType: "Platform", Value: "RoastBlame"},
		},
		ExternalURL: s.cfg.ExternalURLBase + post.ID,
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать метаданные")
	}

	collection := strings.TrimSpace(in.Collection)
	if collection == "" {
		collection = defaultNFTCollection
	}

	nft := &models.NFT{
		ID:              ids.New(models.PrefixNFT),
		ContractAddress: s.cfg.ContractAddress,
		PostID:          post.ID,
		Metadata:        raw,
		MetadataHash:    wallet.Keccak256Hex(raw),
		MintedBy:        actor.UserID,
		MintedAt:        s.now(),
		Price:           wallet.FormatEther(price),
		Royalty:         in.Royalty,
		Collection:      collection,
		Status:          models.NFTStatusMinted,
	}
	if err := s.repo.CreateNFT(ctx, nft); err != nil {
		return nil, storageError(err, nil)
	}

	writeAdminLog(ctx, s.logs, actor.UserID, models.AdminActionMintNFT, nft.ID, "", nft.MintedAt)
	return nft, nil
}

func (s *CryptoService) ListNFTs(ctx context.Context) ([]models.NFT, error) {
	nfts, err := s.repo.ListNFTs(ctx)
	if err != nil {
		return nil, storageError(err, nil)
	}
	return nfts, nil
}

func (s *CryptoService) requireProvider() error {
	if s.provider == nil || !s.provider.Configured() {
		return apperror.Wrap(wallet.ErrNotConfigured, apperror.ErrCodeUpstream, "провайдер кошелька не настроен")
	}
	return nil
}

func parsePositiveAmount(amount string) (*uint256.Int, error) {
	wei, err := wallet.ParseEther(strings.TrimSpace(amount))
	if err != nil {
		return nil, apperror.Validation(err)
	}
	if wei.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть больше нуля")
	}
	return wei, nil
}

// providerError отличает отказ провайдера от сетевой ошибки.
func providerError(err error) error {
	var rpcErr *wallet.RPCError
	if errors.As(err, &rpcErr) {
		return apperror.Wrap(err, apperror.ErrCodeUpstream, rpcErr.Message)
	}
	return apperror.Wrap(err, apperror.ErrCodeUpstream, apperror.ErrWalletUnavailable.Message)
}
