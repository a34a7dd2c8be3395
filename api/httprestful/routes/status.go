package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func StatusRouter(router *gin.RouterGroup) {
	router.GET("/node/status", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}
		context.JSON(http.StatusOK, localNode)
	})
}
