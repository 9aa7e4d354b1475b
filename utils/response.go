package utils

import "github.com/kataras/iris/v12"

// JSONSuccess writes the success envelope {status, message, data}.
func JSONSuccess(ctx iris.Context, statusCode int, message string, data interface{}) {
	ctx.StatusCode(statusCode)
	if data == nil {
		ctx.JSON(iris.Map{"status": true, "message": message})
		return
	}
	ctx.JSON(iris.Map{"status": true, "message": message, "data": data})
}
