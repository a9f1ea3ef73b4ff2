package usecase

// Defaults applied when a flag is absent or empty.
const (
	DefaultServiceName    = "local-test-app"
	DefaultServiceVersion = "0.0.1"
	DefaultPublicBaseURL  = "http://localhost:4173"
	DefaultDistDir        = "./dist"
	DefaultServerURL      = "http://localhost:8200"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	ServiceName    string
	ServiceVersion string
	PublicBaseURL  string
	DistDir        string
	ServerURL      string
	SecretToken    string
	APIKey         string
	Validate       bool
	Strict         bool
}

// Authorization returns the Authorization header value, or "" when no
// credential is configured. The secret token wins over the API key.
func (c Config) Authorization() string {
	switch {
	case c.SecretToken != "":
		return "Bearer " + c.SecretToken
	case c.APIKey != "":
		return "ApiKey " + c.APIKey
	default:
		return ""
	}
}
