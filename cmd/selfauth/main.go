// Command selfauth runs the forward-authentication server that a reverse
// proxy delegates its authorization decisions to.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jelius-sama/SelfAuth/internal/auth"
	"github.com/jelius-sama/SelfAuth/internal/config"
	"github.com/jelius-sama/SelfAuth/internal/httpapi"
	"github.com/jelius-sama/SelfAuth/internal/mail"
	"github.com/jelius-sama/SelfAuth/internal/obs"
	"github.com/jelius-sama/SelfAuth/internal/otp"
	"github.com/jelius-sama/SelfAuth/internal/session"
)

var version = "1.0.0"

func main() {
	cmd := "server"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "server", "s", "-s", "--s", "-server", "--server":
		runServer()
	case "config", "c", "-c", "--c", "-config", "--config":
		runConfig()
	case "version", "-v", "--v", "-version", "--version":
		printVersion()
	default:
		printHelp()
	}
}

func envPath() string {
	if p := strings.TrimSpace(os.Getenv("SELFAUTH_ENV_FILE")); p != "" {
		return p
	}
	return config.DefaultPath
}

func runServer() {
	path := envPath()
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, config.ErrNotConfigured) && !errors.Is(err, config.ErrInvalid) {
			log.Fatalf("load config: %v", err)
		}
		// Serving requests with an unconfigured credential is never an option.
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "ERROR: server not configured")
			fmt.Fprintln(os.Stderr, "Cannot prompt for configuration in non-interactive mode")
			fmt.Fprintln(os.Stderr, "Please run 'selfauth config' in an interactive terminal first")
			os.Exit(1)
		}
		runConfig()
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatalf("load config after setup: %v", err)
		}
	}

	obs.Init()
	obs.InitBuildInfo(version)

	codes := otp.NewStore()
	sessions := session.NewStore()

	mailer, err := mail.NewSMTPSender(cfg.SMTP)
	if err != nil {
		log.Fatalf("mail: %v", err)
	}

	flow := auth.NewService(cfg, codes, sessions, mailer)
	api := httpapi.New(flow, sessions, version)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting selfauth %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	codes.Close()
	sessions.Clear()
	log.Println("Stopped")
}

func runConfig() {
	fmt.Println("SelfAuth environment configuration")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter admin email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("read email: %v", err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		log.Fatal("email cannot be empty")
	}

	password, err := readPassword(reader)
	if err != nil {
		log.Fatalf("read password: %v", err)
	}
	if password == "" {
		log.Fatal("password cannot be empty")
	}

	salted := config.SaltPassword(password)
	path := envPath()
	if err := config.Write(path, email, salted); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to write %s: %v\n\n", path, err)
		printManualInstructions(path, config.Render(email, salted))
		os.Exit(1)
	}

	fmt.Printf("Environment file created at %s\n", path)
	fmt.Println("Add SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and SMTP_FROM to enable code delivery.")
}

// readPassword avoids echoing when stdin is a terminal; piped input falls
// back to a plain line read so scripted setup still works.
func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Enter admin password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printManualInstructions(path, contents string) {
	fmt.Println("Run the following as root to finish configuration:")
	fmt.Println()
	fmt.Printf("  sudo mkdir -p %s\n", filepath.Dir(path))
	fmt.Printf("  sudo tee %s > /dev/null << 'EOF'\n", path)
	fmt.Print(contents)
	fmt.Println("EOF")
	fmt.Printf("  sudo chmod 600 %s\n", path)
}

func printVersion() {
	fmt.Printf("SelfAuth v%s\n", version)
	fmt.Println("A self-hosted authentication server")
}

func printHelp() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("    selfauth [COMMAND]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("    server, s    Start the authentication server (default)")
	fmt.Println("    config, c    Configure admin credentials and create the env file")
	fmt.Println("    version, -v  Print the version")
	fmt.Println("    help, -h     Display this help message")
	fmt.Println()
	fmt.Printf("CONFIGURATION:\n")
	fmt.Printf("    Config file: %s (override with SELFAUTH_ENV_FILE)\n", config.DefaultPath)
	fmt.Println("    Required keys: ADMIN_EMAIL, SALTED_PASS")
	fmt.Println("    Mail keys: SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM")
}
