package httprestful

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/powledger/api/common"
	"github.com/nknorg/powledger/api/common/errcode"
	"github.com/nknorg/powledger/api/httprestful/routes"
	"github.com/nknorg/powledger/api/ratelimiter"
	"github.com/nknorg/powledger/config"
	"github.com/nknorg/powledger/node"
	"github.com/nknorg/powledger/util/log"
)

// RestServer serves the REST API of one local node.
type RestServer struct {
	localNode *node.LocalNode
	engine    *gin.Engine
	server    *http.Server
	listener  net.Listener
}

func NewServer(localNode *node.LocalNode, params *config.Configuration) *RestServer {
	app := gin.New()
	app.Use(gin.Recovery())
	app.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.WebLog.Infof("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	}))
	app.Use(ratelimiter.NewIPRateLimiter(params.RPCIPRateLimit, int(params.RPCIPRateBurst)).Middleware())
	app.Use(func(context *gin.Context) {
		context.Set("localNode", localNode)
	})

	routes.Routes(app)

	// 404 router
	app.NoRoute(func(context *gin.Context) {
		context.JSON(http.StatusNotFound, &common.ErrorResponse{
			Message: "not found",
			Error:   errcode.INVALID_METHOD,
		})
	})

	return &RestServer{
		localNode: localNode,
		engine:    app,
		server: &http.Server{
			Addr:         net.JoinHostPort(params.HttpRestAddr, strconv.Itoa(int(params.HttpRestPort))),
			Handler:      app,
			ReadTimeout:  time.Duration(params.RPCReadTimeout) * time.Second,
			WriteTimeout: time.Duration(params.RPCWriteTimeout) * time.Second,
		},
	}
}

func (s *RestServer) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and serves in the background.
func (s *RestServer) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	log.Infof("REST server listening on %s", listener.Addr())
	return nil
}

// Addr returns the listening address once started.
func (s *RestServer) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *RestServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
