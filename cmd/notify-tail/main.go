// Package main provides an operator tool that tails live notifications
// from the websocket endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func main() {
	base := flag.String("base", "http://localhost:8375", "API base URL")
	token := flag.String("token", os.Getenv("QM_TOKEN"), "Bearer token (defaults to $QM_TOKEN)")
	email := flag.String("email", "", "Sign in with this email when no token is given")
	password := flag.String("password", "", "Password for -email")
	flag.Parse()

	baseURL, err := url.Parse(strings.TrimRight(*base, "/"))
	if err != nil {
		log.Fatalf("invalid -base: %v", err)
	}

	if *token == "" {
		if *email == "" {
			log.Fatal("either -token or -email/-password is required")
		}
		*token, err = signIn(baseURL, *email, *password)
		if err != nil {
			log.Fatalf("sign in: %v", err)
		}
	}

	ticket, err := getTicket(baseURL, *token)
	if err != nil {
		log.Fatalf("ticket: %v", err)
	}

	wsURL := *baseURL
	wsURL.Scheme = "ws"
	if baseURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path = baseURL.Path + "/api/ws"
	wsURL.RawQuery = url.Values{"ticket": {ticket}}.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("dial %s: %v (status %d)", wsURL.Redacted(), err, resp.StatusCode)
		}
		log.Fatalf("dial %s: %v", wsURL.Redacted(), err)
	}
	defer conn.Close()
	log.Printf("connected to %s, waiting for notifications (Ctrl+C to quit)", wsURL.Host)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("read: %v", err)
				}
				return
			}
			printEvent(msg)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printEvent(msg []byte) {
	var event struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
		SentAt  time.Time       `json:"sent_at"`
	}
	if err := json.Unmarshal(msg, &event); err != nil || event.Type == "" {
		fmt.Println(string(msg))
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, event.Payload, "  ", "  "); err != nil {
		pretty.Write(event.Payload)
	}
	fmt.Printf("[%s] %s\n  %s\n", event.SentAt.Local().Format(time.TimeOnly), event.Type, pretty.String())
}

func signIn(base *url.URL, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := httpClient.Post(base.String()+"/api/auth/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign in failed with status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func getTicket(base *url.URL, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, base.String()+"/api/ws/ticket", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}
	var out struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Ticket, nil
}
