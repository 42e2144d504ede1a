package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

func perform(t *testing.T, h gin.HandlerFunc) Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestError(t *testing.T) {
	t.Run("AppError原样返回错误码", func(t *testing.T) {
		resp := perform(t, func(c *gin.Context) { Error(c, apperrors.ErrInsufficientStock) })
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, resp.Code)
		assert.Equal(t, "库存不足", resp.Message)
	})

	t.Run("内部原因不下发", func(t *testing.T) {
		err := apperrors.ErrProviderError.WithCause(fmt.Errorf("paypal: 401 invalid_client"))
		resp := perform(t, func(c *gin.Context) { Error(c, err) })
		assert.Equal(t, apperrors.ErrCodeProviderError, resp.Code)
		assert.NotContains(t, resp.Message, "invalid_client")
	})

	t.Run("普通错误按内部错误处理", func(t *testing.T) {
		resp := perform(t, func(c *gin.Context) { Error(c, fmt.Errorf("boom")) })
		assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
	})
}

func TestNewPageData(t *testing.T) {
	assert.Equal(t, 3, NewPageData(nil, 21, 1, 10).TotalPages)
	assert.Equal(t, 2, NewPageData(nil, 20, 1, 10).TotalPages)
	assert.Equal(t, 0, NewPageData(nil, 5, 1, 0).TotalPages)
}
