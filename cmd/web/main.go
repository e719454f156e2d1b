package main

import (
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tomz197/swarm/internal/config"
)

const (
	defaultHost    = "0.0.0.0"
	defaultPort    = "8080"
	defaultSSHPort = "2222"
	qrSize         = 256
)

//go:embed index.html
var htmlPage string

var pageTemplate = template.Must(template.New("index").Parse(htmlPage))

// page is the data rendered into index.html.
type page struct {
	SSHCommand  string
	SpectateURL string // Empty hides the live view
}

func main() {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_DISPLAY_PORT", defaultSSHPort)
	spectateURL := config.GetEnv("SPECTATE_URL", "")

	p := page{
		SSHCommand:  sshCommand(sshHost, sshPort),
		SpectateURL: spectateURL,
	}
	mux, err := newMux(p)
	if err != nil {
		log.Fatal("failed to build routes", "err", err)
	}

	addr := net.JoinHostPort(host, port)
	log.Info("starting web server", "addr", "http://"+addr, "spectate", spectateURL)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("server error", "err", err)
	}
}

// newMux serves the landing page and a QR code of the SSH command.
// The QR image is rendered once since the command never changes.
func newMux(p page) (*http.ServeMux, error) {
	qr, err := qrcode.Encode(p.SSHCommand, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := pageTemplate.Execute(w, p); err != nil {
			log.Error("render page", "err", err)
		}
	})
	mux.HandleFunc("/qr.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(qr)
	})
	return mux, nil
}

// sshCommand is the command players paste into a terminal.
func sshCommand(host, port string) string {
	var b strings.Builder
	b.WriteString("ssh ")
	if port != "" && port != "22" {
		b.WriteString("-p " + port + " ")
	}
	b.WriteString(host)
	return b.String()
}
