package http

import (
	"errors"
	"net/http"

	"CommodityPulse/pkg/http/middleware"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the envelope with statusCode as both the HTTP status
// and the body status, tagged with the request id.
func DataResponse(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, APIResponse{
		Status:    statusCode,
		Message:   http.StatusText(statusCode),
		RequestID: middleware.RequestID(c),
		Data:      data,
	})
}

func ListResponse(c echo.Context, rows any, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{Rows: rows, Total: total})
}

func SuccessResponse(c echo.Context, data any) error {
	return DataResponse(c, http.StatusOK, data)
}

func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// AppErrorResponse renders err as a one-element error list. Errors that are
// not AppErrors render as ERR_INTERNAL without their text.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
