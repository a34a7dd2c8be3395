package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/chain"
	"github.com/nknorg/powledger/util/log"
)

const blockForgedMessage = "New Block Forged"

func MiningRouter(router *gin.RouterGroup) {
	router.GET("/mine", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		b, err := localNode.Mine(context.Request.Context())
		if err != nil {
			if errors.Is(err, chain.ErrStaleWork) {
				abortWithError(context, http.StatusServiceUnavailable, errcode.STALE_WORK, err.Error())
				return
			}
			if context.Request.Context().Err() != nil {
				log.WebLog.Warningf("Mining aborted: %v", err)
				abortWithError(context, http.StatusServiceUnavailable, errcode.STALE_WORK, err.Error())
				return
			}
			log.WebLog.Errorf("Mine error: %v", err)
			abortWithError(context, http.StatusInternalServerError, errcode.INTERNAL_ERROR, err.Error())
			return
		}

		context.JSON(http.StatusOK, common.NewBlockResponse(blockForgedMessage, b))
	})
}
