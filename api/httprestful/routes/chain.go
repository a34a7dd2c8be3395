package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/util/log"
)

func ChainRouter(router *gin.RouterGroup) {
	router.GET("/", func(context *gin.Context) {
		context.String(http.StatusOK, "Blockchaining :)")
	})

	router.GET("/chain", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		blocks, err := localNode.GetLedger().Chain()
		if err != nil {
			log.WebLog.Errorf("Get chain error: %v", err)
			abortWithError(context, http.StatusInternalServerError, errcode.INTERNAL_ERROR, err.Error())
			return
		}

		context.JSON(http.StatusOK, &common.ChainResponse{
			Chain:  blocks,
			Length: uint64(len(blocks)),
		})
	})
}
