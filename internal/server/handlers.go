package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"nthExchange/internal/model"
)

type quoteRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Side   string `json:"side" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type swapRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Side   string `json:"side" binding:"required"`
	Amount string `json:"amount" binding:"required"`
	User   string `json:"user" binding:"required"`
}

type addLiquidityRequest struct {
	Asset       string `json:"asset" binding:"required"`
	AmountBase  string `json:"amount_base" binding:"required"`
	AmountQuote string `json:"amount_quote" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
}

type removeLiquidityRequest struct {
	Asset    string `json:"asset" binding:"required"`
	Shares   string `json:"shares" binding:"required"`
	Provider string `json:"provider" binding:"required"`
}

func (s *Server) handleQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, amount, ok := s.parseAssetAmount(c, req.Asset, req.Amount)
	if !ok {
		return
	}

	var (
		quote model.Quote
		err   error
	)
	switch req.Side {
	case "buy":
		quote, err = s.exchange.QuoteBuy(asset, amount)
	case "sell":
		quote, err = s.exchange.QuoteSell(asset, amount)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be buy or sell"})
		return
	}
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (s *Server) handleSwap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, amount, ok := s.parseAssetAmount(c, req.Asset, req.Amount)
	if !ok {
		return
	}

	var (
		record model.SwapRecord
		err    error
	)
	switch req.Side {
	case "buy":
		record, err = s.exchange.Buy(asset, amount, req.User)
	case "sell":
		record, err = s.exchange.Sell(asset, amount, req.User)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be buy or sell"})
		return
	}
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) handleAddLiquidity(c *gin.Context) {
	var req addLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, amountBase, ok := s.parseAssetAmount(c, req.Asset, req.AmountBase)
	if !ok {
		return
	}
	amountQuote, err := decimal.NewFromString(req.AmountQuote)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount_quote"})
		return
	}

	result, err := s.exchange.AddLiquidity(asset, amountBase, amountQuote, req.Provider)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRemoveLiquidity(c *gin.Context) {
	var req removeLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, shares, ok := s.parseAssetAmount(c, req.Asset, req.Shares)
	if !ok {
		return
	}

	result, err := s.exchange.RemoveLiquidity(asset, shares, req.Provider)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.exchange.Stats(time.Now()))
}

func (s *Server) parseAssetAmount(c *gin.Context, assetStr, amountStr string) (model.Asset, decimal.Decimal, bool) {
	asset, err := model.ParseAsset(assetStr)
	if err != nil {
		s.renderError(c, err)
		return model.AssetUnknown, decimal.Zero, false
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return model.AssetUnknown, decimal.Zero, false
	}
	return asset, amount, true
}

// renderError maps core errors to HTTP statuses. The taxonomy is closed,
// so anything unmatched is a server fault.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUnsupportedAsset):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInsufficientLPBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrPoolExhausted),
		errors.Is(err, model.ErrNoLiquidity),
		errors.Is(err, model.ErrReserveUnderflow):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
