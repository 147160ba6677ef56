package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/auth"
	"github.com/MrSnakeDoc/bookhub/internal/logger"
	"github.com/MrSnakeDoc/bookhub/internal/metrics"
	"github.com/MrSnakeDoc/bookhub/internal/service"
	"github.com/MrSnakeDoc/bookhub/internal/upload"
)

// Pinger is a backend the readiness probes can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts       []string      // Host headers allowed to reach ops endpoints
	AllowedCIDRS       []string      // IPs allowed to reach ops and maintenance endpoints
	TrustProxy         bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins        []string      // empty => "*"
	RequestTimeout     time.Duration // per-request timeout, 0 disables it
	RateLimitBurst     int           // 0 disables the /api rate limiter
	RateLimitPerMinute int

	Tokens   *auth.TokenService // nil => only demo identities
	DemoMode bool

	DBDriver string
	DB       Pinger // required
	Cache    Pinger // nil when Redis is disabled
	Metrics  *metrics.Collector

	Profiles      *service.ProfileService
	Bookmarks     *service.BookmarkService
	Folders       *service.FolderService
	Tags          *service.TagService
	Relationships *service.RelationshipService
	Capsules      *service.CapsuleService
	DNA           *service.DNAService
	Preferences   *service.PreferenceService
	Links         *service.LinkService
	Imports       *service.ImportService
	Maintenance   *service.MaintenanceService
	Uploader      *upload.Uploader // nil when object storage is not configured

	LinkRecheckTrigger chan struct{} // nil when the link validator is disabled
}

func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
