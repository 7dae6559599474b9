package handlers

import (
	"net/http"

	"finance-dashboard/internal/middlewares"
)

func HandlerHealth(ctx *middlewares.AppContext) {
	ctx.SetJSONStatus(http.StatusOK, "OK")
}
