package util

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultLDAPBaseURL = "https://my.tiue.uz"

	defaultLoginPath      = "/mobile/login"
	defaultRefreshPath    = "/mobile/refresh"
	defaultProfilePath    = "/mobile/data-student-profile"
	defaultCoursesPath    = "/mobile/active-course-list"
	defaultGradesPath     = "/mobile/course-grades-list"
	defaultAttendancePath = "/mobile/course-attendance-list"
	defaultMessagesPath   = "/mobile/messages-list"
	defaultLogoutPath     = "/mobile/logout"

	DefaultValiditySkew = 300 * time.Second
	DefaultProfileTTL   = 10 * time.Minute
	DefaultCoursesTTL   = 5 * time.Minute

	defaultCoursesLang     = "en"
	defaultCoursesPageSize = 10

	defaultTokenFile = ".campus-tokens.json"

	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour

	TokenPartsExpected = 2
	RawTokenLength     = 32
	JWTLeeWay          = 5 * time.Second
)

// Endpoints are paths relative to ClientConfig.BaseURL. An empty Logout
// disables server-side revocation.
type Endpoints struct {
	Login      string
	Refresh    string
	Logout     string
	Profile    string
	Courses    string
	Grades     string
	Attendance string
	Messages   string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:      defaultLoginPath,
		Refresh:    defaultRefreshPath,
		Profile:    defaultProfilePath,
		Courses:    defaultCoursesPath,
		Grades:     defaultGradesPath,
		Attendance: defaultAttendancePath,
		Messages:   defaultMessagesPath,
	}
}

type ClientConfig struct {
	BaseURL   string
	Endpoints Endpoints
	// RequestTimeout bounds every single call. Zero means no timeout.
	RequestTimeout time.Duration
	// RefreshTimeout bounds the shared refresh call. Zero means no timeout.
	RefreshTimeout  time.Duration
	ValiditySkew    time.Duration
	CoursesLang     string
	CoursesPageSize int
}

func NewClientConfig() *ClientConfig {
	base := os.Getenv("LDAP_BASE_URL")
	if base == "" {
		base = defaultLDAPBaseURL
	}

	endpoints := DefaultEndpoints()
	endpoints.Logout = os.Getenv("LDAP_LOGOUT_PATH")

	lang := os.Getenv("COURSES_LANG")
	if lang == "" {
		lang = defaultCoursesLang
	}

	return &ClientConfig{
		BaseURL:         strings.TrimRight(base, "/"),
		Endpoints:       endpoints,
		RequestTimeout:  parseDurationOrDefault("REQUEST_TIMEOUT", 0),
		RefreshTimeout:  parseDurationOrDefault("REFRESH_TIMEOUT", 0),
		ValiditySkew:    parseDurationOrDefault("TOKEN_VALIDITY_SKEW", DefaultValiditySkew),
		CoursesLang:     lang,
		CoursesPageSize: parseIntOrDefault("COURSES_PAGE_SIZE", defaultCoursesPageSize),
	}
}

// URL joins the base URL with an endpoint path.
func (c *ClientConfig) URL(path string) string {
	return c.BaseURL + path
}

type CacheConfig struct {
	ProfileTTL time.Duration
	CoursesTTL time.Duration
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		ProfileTTL: parseDurationOrDefault("PROFILE_CACHE_TTL", DefaultProfileTTL),
		CoursesTTL: parseDurationOrDefault("COURSES_CACHE_TTL", DefaultCoursesTTL),
	}
}

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreFile     StoreBackend = "file"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

type StoreConfig struct {
	Backend   StoreBackend
	FilePath  string
	Namespace string
}

func NewStoreConfig() *StoreConfig {
	backend := StoreBackend(strings.ToLower(os.Getenv("TOKEN_STORE")))
	if backend == "" {
		backend = StoreFile
	}
	path := os.Getenv("TOKEN_FILE")
	if path == "" {
		path = defaultTokenFile
	}
	return &StoreConfig{
		Backend:   backend,
		FilePath:  path,
		Namespace: os.Getenv("TOKEN_NAMESPACE"),
	}
}

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:   parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseIntOrDefault(varName string, def int) int {
	if v := os.Getenv(varName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("Invalid %s: %s, using default %d", varName, v, def)
	}
	return def
}
