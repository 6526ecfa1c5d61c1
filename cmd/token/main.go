package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/yatube/internal/auth"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Username   string        `long:"username" env:"USERNAME" required:"true" description:"username the token is issued for"`
	AuthSecret string        `long:"auth.secret" env:"AUTH_SECRET" required:"true" description:"secret to sign tokens with"`
	AuthIssuer string        `long:"auth.issuer" env:"AUTH_ISSUER" default:"yatube" description:"tokens issuer"`
	AuthTTL    time.Duration `long:"auth.ttl" env:"AUTH_TTL" default:"24h" description:"token lifetime"`
}{}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "token"
	parser.LongDescription = "Issues bearer token for yatube user"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	token, err := auth.New([]byte(opts.AuthSecret), opts.AuthIssuer, opts.AuthTTL).Issue(opts.Username)
	if err != nil {
		logrus.WithError(err).Fatal("failed to issue token")
	}

	fmt.Println(token)
}
