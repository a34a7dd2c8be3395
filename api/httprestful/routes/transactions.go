package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
)

func TransactionRouter(router *gin.RouterGroup) {
	router.POST("/transactions/new", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		var data common.TransactionRequest
		if err := context.ShouldBindJSON(&data); err != nil {
			abortWithError(context, http.StatusBadRequest, errcode.INVALID_PARAMS, "Missing values")
			return
		}

		index := localNode.GetLedger().AddTransaction(*data.Sender, *data.Recipient, *data.Amount)

		context.JSON(http.StatusCreated, &common.MessageResponse{
			Message: fmt.Sprintf("Transaction will be added to Block %d", index),
		})
	})
}
