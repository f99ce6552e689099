package cmd

import (
	"context"

	"github.com/Malowking/bigo/internal/controller/bigo"
	"github.com/Malowking/bigo/internal/service"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/os/gcmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Main = gcmd.Command{
		Name:  "main",
		Usage: "main",
		Brief: "start http server",
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			s := g.Server()

			s.BindHandler("/metrics", ghttp.WrapH(promhttp.Handler()))

			s.Group("/api", func(group *ghttp.RouterGroup) {
				group.Middleware(MiddlewareHandlerResponse, ghttp.MiddlewareCORS)
				group.Bind(
					bigo.NewV1(),
				)
			})
			s.Run()

			service.Shutdown(ctx)
			return nil
		},
	}
)
