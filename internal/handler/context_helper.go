package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/middleware"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
)

// storeSet resolves the calling session's store set.
func storeSet(c *gin.Context, hub *store.Hub) *store.Set {
	return hub.For(c.Request.Context(), middleware.SessionID(c))
}

func accessToken(c *gin.Context) string {
	return middleware.AccessToken(c)
}
