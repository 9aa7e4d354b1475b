package utils

import (
	"strings"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// RoleMiddleware returns a guard that admits only the listed roles. Every
// mutating route declares its allowed role set once, at registration; the
// verified identity is stored in ctx values so handlers never re-derive it.
func RoleMiddleware(allowedRoles ...string) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*AccessToken)
		allowed := false
		for _, role := range allowedRoles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			ctx.StatusCode(iris.StatusForbidden)
			ctx.JSON(iris.Map{
				"status":  false,
				"error":   "Forbidden",
				"message": "Access denied. Requires one of the following roles: " + strings.Join(allowedRoles, ", "),
			})
			return
		}
		ctx.Values().Set("userID", claims.ID)
		ctx.Values().Set("userRole", claims.Role)
		ctx.Next()
	}
}

// UserIDFromTokenMiddleware stores the caller's ID without restricting roles.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("userRole", claims.Role)
	ctx.Next()
}
