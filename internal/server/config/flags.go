package config

import (
	"flag"
	"os"
	"time"

	"github.com/silvercar/backend/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8001")
//	-d string   PostgreSQL DSN
//	-k string   path to the RS256 private key PEM
//	-u string   path to the RS256 public key PEM
//	-t int      access token TTL, minutes
//	-r int      password-reset token TTL, minutes
//	-m string   SMTP host
//	-o int      SMTP port
//	-f string   SMTP from address
//	-w string   SMTP password
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON overlay. Duration flags are accepted as integer minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-u", "-t", "-r", "-m", "-o", "-f", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PrivateKeyPath, "k", config.PrivateKeyPath, "private key path")
	fs.StringVar(&config.PublicKeyPath, "u", config.PublicKeyPath, "public key path")

	accessTokenTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token TTL (in minutes)")
	resetTokenTTL := fs.Int("r", int(config.ResetTokenTTL.Minutes()), "reset token TTL (in minutes)")

	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "o", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPFrom, "f", config.SMTPFrom, "SMTP from address")
	fs.StringVar(&config.SMTPPassword, "w", config.SMTPPassword, "SMTP password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*accessTokenTTL) * time.Minute
	config.ResetTokenTTL = time.Duration(*resetTokenTTL) * time.Minute
}
