package main

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/captcha"
	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/email/mailgun"
	"github.com/donatewisely/donatewisely/internal/email/postmark"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/donatewisely/donatewisely/internal/storage/s3"
	"github.com/donatewisely/donatewisely/internal/telemetry"
	"github.com/donatewisely/donatewisely/internal/web"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
)

const (
	dbDriverSQLite = "sqlite"
	dbDriverMongo  = "mongo"

	emailDriverLog      = "log"
	emailDriverPostmark = "postmark"
	emailDriverMailgun  = "mailgun"

	uploadDriverDisk = "disk"
	uploadDriverS3   = "s3"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	// viewDir is the directory to load templates from, when empty the
	// embedded templates are used.
	viewDir string
	server  web.ServerConfig
}

type dbConfig struct {
	driver        string
	file          string
	migrate       bool
	mongoURI      string
	mongoDatabase string
}

type emailConfig struct {
	driver   string
	service  email.ServiceConfig
	postmark postmark.Settings
	mailgun  mailgun.Settings
}

type uploadConfig struct {
	driver string
	dir    string
	s3     s3.Settings
}

// config is the configuration for the server command.
type config struct {
	http      httpConfig
	session   sessions.Config
	db        dbConfig
	auth      auth.ServiceConfig
	captcha   captcha.Settings
	email     emailConfig
	upload    uploadConfig
	telemetry telemetry.Config
}

// requiredKeys are the env variables without a sane default.
var requiredKeys = []string{
	"HTTP_CSRF_KEY",
	"EMAIL_FROM",
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
			server: web.ServerConfig{
				SecureCookie: true,
			},
		},
		session: sessions.Config{
			CookieName: "dw_session",
			Lifetime:   time.Hour * 24,
			Secure:     true,
		},
		db: dbConfig{
			driver:        dbDriverSQLite,
			file:          "donatewisely.db",
			migrate:       true,
			mongoDatabase: "donatewisely",
		},
		auth: auth.ServiceConfig{
			WorkerTimeout:    time.Second * 10,
			ResetTokenExpiry: time.Hour,
		},
		captcha: captcha.Settings{
			VerifyURL: mustURL(captcha.DefaultVerifyURL),
		},
		email: emailConfig{
			driver: emailDriverLog,
			service: email.ServiceConfig{
				BaseURL: mustURL("http://localhost:8888"),
			},
			postmark: postmark.Settings{
				APIURL:        mustURL("https://api.postmarkapp.com"),
				MessageStream: "outbound",
			},
			mailgun: mailgun.Settings{
				APIURL:   mustURL("https://api.mailgun.net"),
				Username: "api",
			},
		},
		upload: uploadConfig{
			driver: uploadDriverDisk,
			dir:    "uploads",
		},
	}
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"HTTP_CSRF_KEY": func(v string, c *config) error {
		return confKey(v, &c.http.server.CSRFKey)
	},
	"HTTP_SECURE_COOKIE": func(v string, c *config) error {
		err := confBool(v, &c.http.server.SecureCookie)
		c.session.Secure = c.http.server.SecureCookie
		return err
	},
	"HTTP_VIEW_DIR": func(v string, c *config) error {
		c.http.viewDir = v
		return nil
	},
	"BASE_URL": func(v string, c *config) error {
		return confURL(v, &c.email.service.BaseURL)
	},
	"SESSION_COOKIE_NAME": func(v string, c *config) error {
		return confNonEmpty(v, &c.session.CookieName)
	},
	"SESSION_LIFETIME": func(v string, c *config) error {
		return confDuration(v, &c.session.Lifetime, time.Minute, math.MaxInt64)
	},
	"DB_DRIVER": func(v string, c *config) error {
		return confOneOf(v, &c.db.driver, dbDriverSQLite, dbDriverMongo)
	},
	"DB_FILENAME": func(v string, c *config) error {
		return confNonEmpty(v, &c.db.file)
	},
	"DB_MIGRATE": func(v string, c *config) error {
		return confBool(v, &c.db.migrate)
	},
	"MONGO_URI": func(v string, c *config) error {
		return confNonEmpty(v, &c.db.mongoURI)
	},
	"MONGO_DATABASE": func(v string, c *config) error {
		return confNonEmpty(v, &c.db.mongoDatabase)
	},
	"AUTH_WORKER_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.auth.WorkerTimeout, 0, math.MaxInt64)
	},
	"AUTH_RESET_TOKEN_EXPIRY": func(v string, c *config) error {
		return confDuration(v, &c.auth.ResetTokenExpiry, time.Minute, math.MaxInt64)
	},
	"GOOGLE_CLIENT_ID": func(v string, c *config) error {
		c.http.server.Client.GoogleClientID = v
		return nil
	},
	"FACEBOOK_APP_ID": func(v string, c *config) error {
		c.http.server.Client.FacebookAppID = v
		return nil
	},
	"RECAPTCHA_SITE_KEY": func(v string, c *config) error {
		c.http.server.Client.RecaptchaSiteKey = v
		return nil
	},
	"RECAPTCHA_SECRET": func(v string, c *config) error {
		c.captcha.Secret = krypto.NewSecret(v)
		return nil
	},
	"EMAIL_DRIVER": func(v string, c *config) error {
		return confOneOf(v, &c.email.driver, emailDriverLog, emailDriverPostmark, emailDriverMailgun)
	},
	"EMAIL_FROM": func(v string, c *config) error {
		addr, err := email.ParseAddress(v)
		if err != nil {
			return err
		}
		c.email.service.From = addr
		return nil
	},
	"POSTMARK_API_URL": func(v string, c *config) error {
		return confURL(v, &c.email.postmark.APIURL)
	},
	"POSTMARK_SERVER_TOKEN": func(v string, c *config) error {
		c.email.postmark.ServerToken = krypto.NewSecret(v)
		return nil
	},
	"POSTMARK_MESSAGE_STREAM": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.postmark.MessageStream)
	},
	"MAILGUN_API_URL": func(v string, c *config) error {
		return confURL(v, &c.email.mailgun.APIURL)
	},
	"MAILGUN_DOMAIN": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.mailgun.Domain)
	},
	"MAILGUN_USERNAME": func(v string, c *config) error {
		return confNonEmpty(v, &c.email.mailgun.Username)
	},
	"MAILGUN_PASSWORD": func(v string, c *config) error {
		c.email.mailgun.Password = krypto.NewSecret(v)
		return nil
	},
	"UPLOAD_DRIVER": func(v string, c *config) error {
		return confOneOf(v, &c.upload.driver, uploadDriverDisk, uploadDriverS3)
	},
	"UPLOAD_DIR": func(v string, c *config) error {
		return confNonEmpty(v, &c.upload.dir)
	},
	"S3_BUCKET": func(v string, c *config) error {
		return confNonEmpty(v, &c.upload.s3.Bucket)
	},
	"S3_REGION": func(v string, c *config) error {
		return confNonEmpty(v, &c.upload.s3.Region)
	},
	"S3_ENDPOINT": func(v string, c *config) error {
		return confURL(v, &c.upload.s3.Endpoint)
	},
	"S3_ACCESS_KEY": func(v string, c *config) error {
		c.upload.s3.AccessKey = v
		return nil
	},
	"S3_SECRET_KEY": func(v string, c *config) error {
		c.upload.s3.SecretKey = krypto.NewSecret(v)
		return nil
	},
	"OTEL_EXPORTER_OTLP_ENDPOINT": func(v string, c *config) error {
		c.telemetry.Endpoint = v
		return nil
	},
	"OTEL_EXPORTER_OTLP_INSECURE": func(v string, c *config) error {
		return confBool(v, &c.telemetry.Insecure)
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing environment variables.
//
// All invalid and missing variables are reported at once, so that mistakes
// are caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error
	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	for _, key := range requiredKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	errs = append(errs, c.driverErrors()...)

	return c, errors.Join(errs...)
}

// driverErrors reports settings a selected driver can't do without.
func (c config) driverErrors() []error {
	var errs []error

	if c.db.driver == dbDriverMongo && c.db.mongoURI == "" {
		errs = append(errs, errors.New("DB_DRIVER is mongo but MONGO_URI is not set"))
	}

	switch c.email.driver {
	case emailDriverPostmark:
		if c.email.postmark.ServerToken.IsEmpty() {
			errs = append(errs, errors.New("EMAIL_DRIVER is postmark but POSTMARK_SERVER_TOKEN is not set"))
		}
	case emailDriverMailgun:
		if c.email.mailgun.Domain == "" || c.email.mailgun.Password.IsEmpty() {
			errs = append(errs, errors.New("EMAIL_DRIVER is mailgun but MAILGUN_DOMAIN or MAILGUN_PASSWORD is not set"))
		}
	}

	if c.upload.driver == uploadDriverS3 && (c.upload.s3.Bucket == "" || c.upload.s3.Region == "") {
		errs = append(errs, errors.New("UPLOAD_DRIVER is s3 but S3_BUCKET or S3_REGION is not set"))
	}

	return errs
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

func confBool(v string, tgt *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}

	*tgt = b
	return nil
}

func confKey(v string, tgt *krypto.Key) error {
	k, err := krypto.ParseKey(v)
	if err != nil {
		return err
	}

	*tgt = k
	return nil
}

// confURL requires absolute URLs.
func confURL(v string, tgt **url.URL) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q needs a scheme and host", v)
	}

	*tgt = u
	return nil
}

func confNonEmpty(v string, tgt *string) error {
	if v == "" {
		return errors.New("can't be empty")
	}

	*tgt = v
	return nil
}

func confOneOf(v string, tgt *string, options ...string) error {
	if !slices.Contains(options, v) {
		return fmt.Errorf("%q is not one of %v", v, options)
	}

	*tgt = v
	return nil
}

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}
