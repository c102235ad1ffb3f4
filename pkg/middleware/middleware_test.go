package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"EmergencyAssist/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type countingObserver struct {
	allow, deny int
}

func (o *countingObserver) OnAllow(string, string) { o.allow++ }
func (o *countingObserver) OnDeny(string, string)  { o.deny++ }

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterDeniesOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &countingObserver{}
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:          "2-M",
		PerRouteRates: map[string]string{"/slow": "1-M"},
		SkipPaths:     []string{"/health"},
		AddHeaders:    true,
	}, nil).WithObserver(obs)

	r := gin.New()
	r.Use(rl.Middleware())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/fast", ok)
	r.GET("/slow", ok)
	r.GET("/health", ok)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/fast", nil).Code)
	w := serve(r, http.MethodGet, "/fast", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	w = serve(r, http.MethodGet, "/fast", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 路由级速率使用独立计数
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/slow", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/slow", nil).Code)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
	}
	assert.Equal(t, 3, obs.allow)
	assert.Equal(t, 2, obs.deny)
}

func TestRateLimiterWhitelist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(RateLimiterConfig{Rate: "1-M", WhitelistCIDRs: []string{"192.0.2.0/24"}}, nil)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	// httptest 默认 RemoteAddr 为 192.0.2.1
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	}
}

func TestIdempotencyDefaultStoreDoesNotEvict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware(IdempotencyConfig{}))
	r.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })

	first := map[string]string{"Idempotency-Key": "key-0"}
	require.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/items", first).Code)
	// 超过本地 LRU 默认容量的键数量
	for i := 1; i <= 1500; i++ {
		serve(r, http.MethodPost, "/items", map[string]string{"Idempotency-Key": "key-" + strconv.Itoa(i)})
	}
	assert.Equal(t, http.StatusConflict, serve(r, http.MethodPost, "/items", first).Code)
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware(IdempotencyConfig{}))
	calls := 0
	r.POST("/items", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	key := map[string]string{"Idempotency-Key": "abc"}
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/items", key).Code)
	dup := serve(r, http.MethodPost, "/items", key)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.JSONEq(t, `{"message":"Duplicate request"}`, dup.Body.String())
	assert.Equal(t, 1, calls)

	// 无幂等键时不做限制
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/items", nil).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/items", nil).Code)

	// 失败请求释放键
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/fail", key).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/fail", key).Code)
}

func TestLanguageMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LanguageMiddleware(language.English, language.Spanish))
	r.GET("/lang", func(c *gin.Context) { c.String(http.StatusOK, Lang(c)) })

	cases := []struct {
		path    string
		headers map[string]string
		want    string
	}{
		{"/lang", nil, "en"},
		{"/lang?lang=es", nil, "es"},
		{"/lang", map[string]string{"Accept-Language": "es-MX,es;q=0.9"}, "es"},
		{"/lang?lang=en", map[string]string{"Accept-Language": "es"}, "en"},
		{"/lang?lang=zz", map[string]string{"Accept-Language": "es"}, "es"},
		{"/lang", map[string]string{"Accept-Language": "ja"}, "en"},
	}
	for _, tc := range cases {
		w := serve(r, http.MethodGet, tc.path, tc.headers)
		assert.Equal(t, tc.want, w.Body.String(), tc.path)
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(logger.RequestIDKey)) })

	w := serve(r, http.MethodGet, "/id", nil)
	require.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/id", map[string]string{RequestIDHeader: "given"})
	assert.Equal(t, "given", w.Body.String())
}
