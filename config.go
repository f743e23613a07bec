package newsletter

import "time"

// Config represents the main config
type Config struct {
	Log struct {
		Level  string
		Format string // "json" or "console"
	}

	HTTP struct {
		Addr string
	}

	DB struct {
		Type            string // "postgres", "sqlite" or "bolt"
		Path            string
		URL             string
		MaxConns        int
		ConnectAttempts int
		ConnectTimeout  time.Duration
	}

	AMQP struct {
		URL        string
		Exchange   string
		RoutingKey string
		Queue      string
		DeadLetter struct {
			Exchange   string
			RoutingKey string
			Queue      string
		}
	}

	Upstream struct {
		Host     string
		Port     int
		Root     string
		Username string
		Token    string
		Timeout  time.Duration
	}

	Auth struct {
		TokensPath string
	}

	Mailer struct {
		Type    string // "log" or "smtp"
		From    string
		Subject string
		Product struct {
			Name string
			Link string
		}
	}

	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	Sentry struct {
		DSN string
	}
}
