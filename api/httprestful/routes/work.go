package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/chain"
	"github.com/nknorg/powledger/util/log"
)

// WorkRouter serves external miners: getwork hands out the head, submitwork
// takes back a proof for the block after it.
func WorkRouter(router *gin.RouterGroup) {
	router.GET("/getwork", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		work := localNode.GetLedger().Work()
		context.JSON(http.StatusOK, &common.WorkResponse{
			LastIndex: work.Index,
			LastHash:  work.Hash,
			LastProof: work.Proof,
		})
	})

	router.GET("/getwork/difficulty", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		ledger := localNode.GetLedger()
		context.JSON(http.StatusOK, &common.DifficultyResponse{
			Difficulty: ledger.Difficulty(),
			BlockTime:  ledger.BlockTime(),
		})
	})

	router.POST("/setdiff", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		var data common.SetDifficultyRequest
		if err := context.ShouldBindJSON(&data); err != nil {
			abortWithError(context, http.StatusBadRequest, errcode.INVALID_PARAMS, "Missing values")
			return
		}

		localNode.GetLedger().SetDifficulty(*data.Diff)

		context.JSON(http.StatusOK, &common.MessageResponse{
			Message: fmt.Sprintf("Difficulty set to %d", *data.Diff),
		})
	})

	router.POST("/submitwork", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		var data common.SubmitWorkRequest
		if err := context.ShouldBindJSON(&data); err != nil {
			abortWithError(context, http.StatusBadRequest, errcode.INVALID_PARAMS, "Missing values")
			return
		}

		b, ok, err := localNode.GetLedger().SubmitExternalWork(*data.Index, *data.Proof, *data.Address)
		if errors.Is(err, chain.ErrInvalidProof) {
			log.WebLog.Warningf("Rejected proof %d for index %d from %s", *data.Proof, *data.Index, *data.Address)
			context.JSON(http.StatusOK, gin.H{})
			return
		}
		if err != nil {
			log.WebLog.Errorf("Submit work error: %v", err)
			abortWithError(context, http.StatusInternalServerError, errcode.INTERNAL_ERROR, err.Error())
			return
		}
		if !ok {
			context.JSON(http.StatusOK, gin.H{})
			return
		}

		context.JSON(http.StatusOK, common.NewBlockResponse(blockForgedMessage, b))
	})
}
