package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/roastblame-backend/internal/dto"
	"github.com/ignatzorin/roastblame-backend/internal/http/handlers/common"
	"github.com/ignatzorin/roastblame-backend/internal/service"
)

// CryptoHandler - кошельки, транзакции, чаевые и NFT.
type CryptoHandler struct {
	crypto *service.CryptoService
}

// NewCryptoHandler создаёт хэндлер.
func NewCryptoHandler(crypto *service.CryptoService) *CryptoHandler {
	return &CryptoHandler{crypto: crypto}
}

// GetWallet обрабатывает GET /wallet.
func (h *CryptoHandler) GetWallet(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	info, err := h.crypto.GetWallet(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ConnectWallet обрабатывает POST /wallet.
func (h *CryptoHandler) ConnectWallet(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.ConnectWalletRequest
	// Без тела адрес запрашивается у провайдера
	_ = c.ShouldBindJSON(&req)

	wallet, err := h.crypto.ConnectWallet(c.Request.Context(), actor, req.Address)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// DisconnectWallet обрабатывает DELETE /wallet.
func (h *CryptoHandler) DisconnectWallet(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.crypto.DisconnectWallet(c.Request.Context(), actor); err != nil {
		common.RespondAppError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// ListTransactions обрабатывает GET /crypto/transactions.
func (h *CryptoHandler) ListTransactions(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	txs, err := h.crypto.ListTransactions(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// RecordTransaction обрабатывает POST /crypto/transactions.
func (h *CryptoHandler) RecordTransaction(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.RecordTransactionRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	tx, err := h.crypto.RecordTransaction(c.Request.Context(), actor, service.RecordTransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		TxHash:      req.TxHash,
		PostID:      req.PostID,
		Status:      req.Status,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// SendTip обрабатывает POST /crypto/tips.
func (h *CryptoHandler) SendTip(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.TipRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	tx, err := h.crypto.SendTip(c.Request.Context(), actor, service.TipInput{
		PostID:    req.PostID,
		ToAddress: req.ToAddress,
		Amount:    req.Amount,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// ListNFTs обрабатывает GET /nfts.
func (h *CryptoHandler) ListNFTs(c *gin.Context) {
	nfts, err := h.crypto.ListNFTs(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, nfts)
}

// MintNFT обрабатывает POST /admin/nfts.
func (h *CryptoHandler) MintNFT(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	var req dto.MintNFTRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	nft, err := h.crypto.MintNFT(c.Request.Context(), actor, service.MintNFTInput{
		PostID:      req.PostID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Royalty:     req.Royalty,
		Collection:  req.Collection,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, nft)
}
