package api

import (
	"errors"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var errorStatus = []struct {
	err    *errorsmod.Error
	status int
}{
	{types.ErrInvalidAddress, http.StatusBadRequest},
	{types.ErrInvalidAmount, http.StatusBadRequest},
	{types.ErrInvalidParams, http.StatusBadRequest},
	{types.ErrInvalidCommitment, http.StatusBadRequest},
	{types.ErrUnauthorized, http.StatusForbidden},
	{types.ErrAccountNotFound, http.StatusNotFound},
	{types.ErrSlashRecordNotFound, http.StatusNotFound},
	{types.ErrAccountExists, http.StatusConflict},
	{types.ErrAlreadyInitialized, http.StatusConflict},
	{types.ErrNotInitialized, http.StatusPreconditionFailed},
	{types.ErrInvalidProof, http.StatusUnprocessableEntity},
	{types.ErrInvalidReveal, http.StatusUnprocessableEntity},
	{types.ErrTraderNotVerified, http.StatusUnprocessableEntity},
	{types.ErrProofExpired, http.StatusUnprocessableEntity},
	{types.ErrInsufficientStake, http.StatusUnprocessableEntity},
	{types.ErrRevealTooEarly, http.StatusTooEarly},
	{types.ErrLockupPeriodNotElapsed, http.StatusTooEarly},
	{types.ErrLiquidityLockNotElapsed, http.StatusTooEarly},
	{types.ErrTransferFailed, http.StatusPaymentRequired},
	{types.ErrArithmeticOverflow, http.StatusUnprocessableEntity},
	{types.ErrArithmeticUnderflow, http.StatusUnprocessableEntity},
	{types.ErrDivisionByZero, http.StatusUnprocessableEntity},
}

var grpcStatus = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.NotFound:           http.StatusNotFound,
	codes.FailedPrecondition: http.StatusPreconditionFailed,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.Internal:           http.StatusInternalServerError,
}

// httpStatus maps a module error or a gRPC status error to an HTTP status
func httpStatus(err error) (int, string) {
	for _, m := range errorStatus {
		if errorsmod.IsOf(err, m.err) {
			return m.status, m.err.Codespace() + "/" + m.err.Error()
		}
	}
	if st, ok := status.FromError(err); ok {
		if code, found := grpcStatus[st.Code()]; found {
			return code, st.Code().String()
		}
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func moduleError(err error) *errorsmod.Error {
	for _, m := range errorStatus {
		if errorsmod.IsOf(err, m.err) {
			return m.err
		}
	}
	return nil
}

func writeError(c *gin.Context, err error) {
	code, name := httpStatus(err)
	msg := err.Error()
	if moduleError(err) == nil {
		if st, ok := status.FromError(err); ok {
			msg = st.Message()
		}
	}
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:     msg,
		Code:      name,
		RequestID: c.GetString(contextKeyRequestID),
	})
}
