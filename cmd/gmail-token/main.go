// Command gmail-token runs the OAuth2 consent flow once and prints the
// refresh token the service needs for the Gmail transport and sender.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"taskminder/internal/config"
	"taskminder/internal/gmailauth"
)

func main() {
	fs := pflag.NewFlagSet("gmail-token", pflag.ExitOnError)
	fs.String("config", "", "path to a config file")
	redirect := fs.String("redirect-url", "http://localhost:8080/callback", "OAuth2 redirect URL registered for the client")
	fs.Parse(os.Args[1:])

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Mail.ClientID == "" || cfg.Mail.ClientSecret == "" {
		logrus.Fatal("Please set GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET")
	}

	oauthCfg := gmailauth.OAuthConfig(&cfg.Mail, *redirect)
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Go to the following link in your browser:\n\n%s\n\n", authURL)
	fmt.Println("After authorization you are redirected; copy the 'code' parameter from that URL.")
	fmt.Print("\nEnter the authorization code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		logrus.Fatalf("Failed to read authorization code: %v", err)
	}

	tok, err := oauthCfg.Exchange(context.Background(), strings.TrimSpace(code))
	if err != nil {
		logrus.Fatalf("Unable to retrieve token: %v", err)
	}
	if tok.RefreshToken == "" {
		logrus.Fatal("No refresh token returned; revoke the app's access and try again")
	}

	logrus.WithField("expiry", tok.Expiry).Info("Token retrieved")
	fmt.Println("\nAdd the refresh token to your environment:")
	fmt.Printf("export GMAIL_REFRESH_TOKEN=%q\n", tok.RefreshToken)
}
