package handler

import (
	"net/http"

	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// walletNetworks are the chains the settings form offers.
var walletNetworks = []string{"Ethereum"}

// PageHandler renders the server-side pages.
type PageHandler struct {
	BasePath string
}

func NewPageHandler(basePath string) *PageHandler {
	return &PageHandler{BasePath: basePath}
}

// Settings renders the settings page with the Add Web3 Wallet form. The
// address pattern comes from the server's validator.
func (h *PageHandler) Settings(c *gin.Context) {
	c.HTML(http.StatusOK, "settings.html", gin.H{
		"BasePath":       h.BasePath,
		"AddressPattern": util.EVMAddressPattern,
		"Networks":       walletNetworks,
	})
}
