package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Muitas denúncias em pouco tempo. Tente novamente em instantes."

// RateLimit aplica um token bucket global de perMinute requisições, com
// burst do mesmo tamanho. É global porque o endereço do cliente nunca é
// guardado. perMinute <= 0 desativa o limite.
func RateLimit(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"success": false,
					"message": msgTooManyRequests,
				})
			}
			return next(c)
		}
	}
}
