package locales

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoadsEmbeddedTranslations(t *testing.T) {
	require.NoError(t, Init())
	require.NoError(t, Init(), "Init should be idempotent")
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-GB", "en"},
		{"de-DE", "en"},
		{"not a header;;", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.header))
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Order not found", Translate("en", "NOT_FOUND", "fallback", map[string]interface{}{"Entity": "Order"}))
	assert.Equal(t, "Недостаточно запчастей на складе", Translate("ru", "INSUFFICIENT_STOCK", "fallback", nil))
	assert.Equal(t, "fallback", Translate("en", "NO_SUCH_MESSAGE", "fallback", nil))
}

func TestTranslateContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, "en", FromContext(c))

	c.Set(ContextKey, "ru")
	assert.Equal(t, "Внутренняя ошибка сервера", TranslateContext(c, "INTERNAL_ERROR", "x", nil))
}
