package mailer

// Config holds sender defaults.
type Config struct {
	FromEmail       string `env:"EMAIL_FROM" envDefault:"noreply@localhost"`
	FromName        string `env:"EMAIL_FROM_NAME"`
	FallbackSubject string `env:"EMAIL_FALLBACK_SUBJECT" envDefault:"Notification"`
}

// From returns the configured sender address.
func (c Config) From() Address {
	return Address{Email: c.FromEmail, Name: c.FromName}
}
