package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pickstudio/chat-backend/pkg/errorx"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		req, err := bindRequest[Request](ginCtx)
		if err != nil {
			writeResponse(ginCtx, (*Response)(nil), errorx.New(errorx.BadRequest, "Unable to bind the request"))
			return
		}

		begin := time.Now()
		resp, err := handler(router.ctx, req)
		if err != nil {
			xcontext.Logger(router.ctx).Warnf("%s %s failed after %s: %v",
				ginCtx.Request.Method, ginCtx.Request.URL.Path, time.Since(begin), err)
		} else {
			xcontext.Logger(router.ctx).Debugf("%s %s succeeded after %s",
				ginCtx.Request.Method, ginCtx.Request.URL.Path, time.Since(begin))
		}

		writeResponse(ginCtx, resp, err)
	}
}

func wrapMiddleware(router *Router, middleware MiddlewareFunc) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		if err := middleware(router.ctx); err != nil {
			writeResponse(ginCtx, (*struct{})(nil), err)
			ginCtx.Abort()
		}
	}
}

func bindRequest[Request any](ginCtx *gin.Context) (Request, error) {
	var req Request
	if len(ginCtx.Params) > 0 {
		if err := ginCtx.ShouldBindUri(&req); err != nil {
			return req, err
		}
	}

	if err := ginCtx.ShouldBindQuery(&req); err != nil {
		return req, err
	}

	if ginCtx.Request.ContentLength > 0 {
		if err := ginCtx.ShouldBindJSON(&req); err != nil {
			return req, err
		}
	}

	return req, nil
}

func writeResponse[Response any](ginCtx *gin.Context, resp *Response, err error) {
	if err != nil {
		errResp := newErrorResponse(err)
		ginCtx.JSON(statusOf(err), errResp)
		return
	}

	if resp != nil {
		ginCtx.JSON(http.StatusOK, newResponse(resp))
	} else {
		ginCtx.JSON(http.StatusOK, newResponse(nil))
	}
}

// Websocket registers a connection handler on pattern. The request is bound
// from uri and query parameters, then the http connection is upgraded and a
// websocket client placed into the handler's context. The client is closed
// when the handler returns.
func Websocket[Request any](
	r *Router, pattern string, handler func(ctx context.Context, req Request) error,
) {
	r.Inner.GET(pattern, func(ginCtx *gin.Context) {
		req, err := bindRequest[Request](ginCtx)
		if err != nil {
			writeResponse(ginCtx, (*struct{})(nil), errorx.New(errorx.BadRequest, "Unable to bind the request"))
			return
		}

		conn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
		if err != nil {
			xcontext.Logger(r.ctx).Warnf("Unable to upgrade the connection: %v", err)
			return
		}

		client := newWSClient(r.ctx, conn)
		defer client.Close()

		ctx := xcontext.WithWSClient(r.ctx, client)
		if err := handler(ctx, req); err != nil {
			xcontext.Logger(ctx).Warnf("Websocket handler stopped: %v", err)
		}
	})
}
