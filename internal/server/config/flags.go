package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8080")
//	-g string   gRPC health bind address, empty disables it
//	-d string   database DSN (postgres://, mongodb:// or memory://)
//	-s string   JWT HMAC secret key
//	-k int      bcrypt cost
//	-t int      access token validity, minutes (0 = no expiry)
//	-r string   Redis address for the revocation list
//	-l string   log level
//
// Only these flags are looked at, so -c/-config and -env-file can share os.Args.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-k", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the REST server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.PasswordHashCost, "k", config.PasswordHashCost, "bcrypt cost")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes, 0 = no expiry)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for token revocation")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -t replaces the value, other layers may carry sub-minute precision
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
