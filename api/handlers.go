package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/gin-gonic/gin"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// FaucetRequest asks for stake denom to be minted to the caller
type FaucetRequest struct {
	Amount uint64 `json:"amount" binding:"required,gt=0"`
}

// bindSigned decodes the request body into msg and makes the caller the
// signer. A body naming a different signer is rejected. An empty body is
// accepted for messages without other fields.
func (s *Server) bindSigned(c *gin.Context, msg interface{}, signer *string) bool {
	if err := c.ShouldBindJSON(msg); err != nil && !errors.Is(err, io.EOF) {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(c, err)
			return false
		}
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
		return false
	}

	caller := c.GetString(contextKeyAddress)
	if *signer == "" {
		*signer = caller
	}
	if *signer != caller {
		writeError(c, types.ErrUnauthorized.Wrapf("token is for %s, message signed by %s", caller, *signer))
		return false
	}
	return true
}

func (s *Server) handleInitialize(c *gin.Context) {
	var msg types.MsgInitialize
	if !s.bindSigned(c, &msg, &msg.Admin) {
		return
	}
	resp, err := s.engine.Initialize(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleUpdateParams(c *gin.Context) {
	var msg types.MsgUpdateParams
	if !s.bindSigned(c, &msg, &msg.Authority) {
		return
	}
	resp, err := s.engine.UpdateParams(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleOpenTraderAccount(c *gin.Context) {
	var msg types.MsgOpenTraderAccount
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.OpenTraderAccount(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleStake(c *gin.Context) {
	var msg types.MsgStake
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.Stake(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVerifyPriority(c *gin.Context) {
	var msg types.MsgVerifyPriority
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.VerifyPriority(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBatchStakeAndVerify(c *gin.Context) {
	var msg types.MsgBatchStakeAndVerify
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.BatchStakeAndVerify(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRevealTrade(c *gin.Context) {
	var msg types.MsgRevealTrade
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.RevealTrade(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleUnstake(c *gin.Context) {
	var msg types.MsgUnstake
	if !s.bindSigned(c, &msg, &msg.Trader) {
		return
	}
	resp, err := s.engine.Unstake(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleAllocateBandwidth scores the caller and records the allocation
func (s *Server) handleAllocateBandwidth(c *gin.Context) {
	alloc, err := s.engine.AllocateBandwidth(c.Request.Context(), c.GetString(contextKeyAddress))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.QueryBandwidthResponse{Allocation: alloc})
}

func (s *Server) handleOpenLiquidityAccount(c *gin.Context) {
	var msg types.MsgOpenLiquidityAccount
	if !s.bindSigned(c, &msg, &msg.Provider) {
		return
	}
	resp, err := s.engine.OpenLiquidityAccount(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleProvideLiquidity(c *gin.Context) {
	var msg types.MsgProvideLiquidity
	if !s.bindSigned(c, &msg, &msg.Provider) {
		return
	}
	resp, err := s.engine.ProvideLiquidity(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFaucet(c *gin.Context) {
	var req FaucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
		return
	}
	coin, err := s.engine.Mint(c.Request.Context(), c.GetString(contextKeyAddress), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": coin})
}

func (s *Server) handleGetParams(c *gin.Context) {
	resp, err := s.engine.Params(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetGlobalState(c *gin.Context) {
	resp, err := s.engine.GlobalState(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTrader(c *gin.Context) {
	resp, err := s.engine.Trader(c.Request.Context(), types.QueryTraderRequest{Trader: c.Param("address")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetBandwidth previews the allocation without recording it
func (s *Server) handleGetBandwidth(c *gin.Context) {
	resp, err := s.engine.Bandwidth(c.Request.Context(), types.QueryBandwidthRequest{Trader: c.Param("address")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetLiquidityAccount(c *gin.Context) {
	resp, err := s.engine.LiquidityAccount(c.Request.Context(), types.QueryLiquidityAccountRequest{Provider: c.Param("address")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetSlashRecords(c *gin.Context) {
	page := &query.PageRequest{}
	for name, dst := range map[string]*uint64{"limit": &page.Limit, "offset": &page.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abort(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid "+name, err.Error())
			return
		}
		*dst = v
	}
	page.CountTotal = c.Query("count_total") == "true"

	resp, err := s.engine.SlashRecords(c.Request.Context(), types.QuerySlashRecordsRequest{
		Trader:     c.Query("trader"),
		Pagination: page,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetBalance(c *gin.Context) {
	coin, err := s.engine.Balance(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": c.Param("address"), "balance": coin})
}

func (s *Server) handleGetVaults(c *gin.Context) {
	vaults, err := s.engine.VaultBalances(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vaults": vaults})
}
