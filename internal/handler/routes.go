// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"riskgrid/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/v1/calc",
				Handler: CalcHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/v1/health",
				Handler: HealthHandler(serverCtx),
			},
		},
	)
}
