package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		// Query routes (public)
		v1.GET("/params", s.handleGetParams)
		v1.GET("/global", s.handleGetGlobalState)
		v1.GET("/traders/:address", s.handleGetTrader)
		v1.GET("/traders/:address/bandwidth", s.handleGetBandwidth)
		v1.GET("/liquidity/:address", s.handleGetLiquidityAccount)
		v1.GET("/slashes", s.handleGetSlashRecords)
		v1.GET("/balances/:address", s.handleGetBalance)
		v1.GET("/vaults", s.handleGetVaults)

		// Operations (protected); the token subject is the signer
		protected := v1.Group("")
		protected.Use(s.AuthMiddleware())
		{
			protected.POST("/initialize", s.handleInitialize)
			protected.PUT("/params", s.handleUpdateParams)

			traders := protected.Group("/traders")
			{
				traders.POST("", s.handleOpenTraderAccount)
				traders.POST("/stake", s.handleStake)
				traders.POST("/verify", s.handleVerifyPriority)
				traders.POST("/batch-verify", s.handleBatchStakeAndVerify)
				traders.POST("/reveal", s.handleRevealTrade)
				traders.POST("/unstake", s.handleUnstake)
				traders.POST("/bandwidth", s.handleAllocateBandwidth)
			}

			liquidity := protected.Group("/liquidity")
			{
				liquidity.POST("", s.handleOpenLiquidityAccount)
				liquidity.POST("/provide", s.handleProvideLiquidity)
			}

			if s.config.EnableFaucet {
				protected.POST("/faucet", s.handleFaucet)
			}
		}
	}
}
