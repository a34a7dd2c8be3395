package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/util/log"
)

func NodesRouter(router *gin.RouterGroup) {
	router.GET("/nodes", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		nodes := localNode.GetLedger().Nodes()
		context.JSON(http.StatusOK, &common.NodesResponse{
			Nodes:  nodes,
			Length: len(nodes),
		})
	})

	router.POST("/nodes/register", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		var data common.RegisterNodesRequest
		if err := context.ShouldBindJSON(&data); err != nil {
			abortWithError(context, http.StatusBadRequest, errcode.INVALID_PARAMS, "Error: Please supply a valid list of nodes")
			return
		}

		nodes, err := localNode.GetLedger().RegisterNodes(data.Nodes)
		if err != nil {
			log.WebLog.Warningf("Register nodes error: %v", err)
			abortWithError(context, http.StatusBadRequest, errcode.INVALID_PARAMS, err.Error())
			return
		}

		context.JSON(http.StatusCreated, &common.RegisterNodesResponse{
			Message:    "New nodes have been added",
			TotalNodes: nodes,
		})
	})

	router.GET("/nodes/resolve", func(context *gin.Context) {
		localNode, ok := getLocalNode(context)
		if !ok {
			return
		}

		replaced, blocks, err := localNode.ResolveConflicts(context.Request.Context())
		if err != nil {
			log.WebLog.Errorf("Resolve conflicts error: %v", err)
			abortWithError(context, http.StatusInternalServerError, errcode.INTERNAL_ERROR, err.Error())
			return
		}

		resp := &common.ResolveResponse{
			Message: "Our chain is authoritative",
			Chain:   blocks,
		}
		if replaced {
			resp.Message = "Our chain was replaced"
			resp.NewChain = blocks
		}
		context.JSON(http.StatusOK, resp)
	})
}
