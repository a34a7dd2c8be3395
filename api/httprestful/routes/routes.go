package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/node"
)

func Routes(app *gin.Engine) {
	router := app.Group("/")

	ChainRouter(router)
	TransactionRouter(router)
	MiningRouter(router)
	NodesRouter(router)
	WorkRouter(router)
	StatusRouter(router)
}

func abortWithError(context *gin.Context, status int, code errcode.ErrCode, message string) {
	context.AbortWithStatusJSON(status, &common.ErrorResponse{
		Message: message,
		Error:   code,
	})
}

func getLocalNode(context *gin.Context) (*node.LocalNode, bool) {
	v, exists := context.Get("localNode")
	localNode, ok := v.(*node.LocalNode)
	if !exists || !ok || localNode == nil {
		abortWithError(context, http.StatusInternalServerError, errcode.INTERNAL_ERROR, "local node is not ready")
		return nil, false
	}
	return localNode, true
}
