package middleware

import (
	"github.com/labstack/echo/v4"
)

// identifyingHeaders podem revelar quem enviou a denúncia.
var identifyingHeaders = []string{
	"X-Forwarded-For",
	"X-Real-Ip",
	"Cf-Connecting-Ip",
	"True-Client-Ip",
	"Forwarded",
	"User-Agent",
}

// Anonymize remove os headers que identificam o cliente e o endereço remoto
// antes que qualquer handler ou logger os veja.
func Anonymize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, h := range identifyingHeaders {
				req.Header.Del(h)
			}
			req.RemoteAddr = ""
			return next(c)
		}
	}
}
