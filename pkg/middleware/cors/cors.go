package cors

import (
	"strings"
	"time"

	ginCors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tuition-web/pkg/middleware/requestid"
)

// New returns a CORS middleware honoring the allowed origins. An empty list reflects any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	cfg := ginCors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", requestid.HeaderKey},
		ExposeHeaders:    []string{requestid.HeaderKey},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}

	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return ginCors.New(cfg)
	}

	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins = append(origins, strings.TrimRight(origin, "/"))
	}
	cfg.AllowOrigins = origins
	return ginCors.New(cfg)
}
