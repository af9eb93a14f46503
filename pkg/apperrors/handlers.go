package apperrors

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler renders errors for gin handlers.
// Debug keeps wrapped error text in 5xx responses.
type GinErrorHandler struct {
	Debug  bool
	Logger *zap.Logger
}

var defaultHandler = &GinErrorHandler{Debug: false, Logger: zap.NewNop()}

// Configure sets the process-wide handler used by HandleError.
func Configure(debug bool, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultHandler = &GinErrorHandler{Debug: debug, Logger: logger}
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		h.Logger.Error("server error",
			zap.String("code", string(appErr.Code)),
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Unwrap()),
		)
		if h.Debug && appErr.Err != nil {
			appErr = Wrap(appErr.Err, appErr.Code, appErr.Domain, appErr.Message, appErr.HTTPCode).
				WithDetails(appErr.Err.Error())
		}
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
