package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey 请求 ID 在 gin.Context 中的键
const RequestIDKey = "request_id"

// Response 统一响应信封，业务错误也以 HTTP 200 返回
type Response struct {
	StatusCode int         `json:"status_code"` // 业务状态码，0 为成功
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 列表接口附带分页信息
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 按状态码输出错误，error_code 取默认映射
func Error(c *gin.Context, statusCode int, msg string) {
	writeError(c, statusCode, msg, DefaultErrorCode(statusCode))
}

// AppErrorResponse 按 AppError 输出错误，内部错误只进日志
func AppErrorResponse(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		return
	}
	errorCode := appErr.ErrorCode
	if errorCode == "" {
		errorCode = DefaultErrorCode(appErr.Code)
	}
	writeError(c, appErr.Code, appErr.Message, errorCode)
}

// AbortWithError 中间件内输出错误并终止后续处理
func AbortWithError(c *gin.Context, statusCode int, msg string) {
	Error(c, statusCode, msg)
	c.Abort()
}

func writeError(c *gin.Context, statusCode int, msg, errorCode string) {
	data := gin.H{"error_code": errorCode}
	if id := c.GetString(RequestIDKey); id != "" {
		data["request_id"] = id
	}
	c.JSON(http.StatusOK, Response{StatusCode: statusCode, Msg: msg, Data: data})
}
