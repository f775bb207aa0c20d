// Command loadtest drives a running hub with concurrent HTTP senders
// and websocket listeners, then prints a delivery summary.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	TargetURL string `envconfig:"TARGET_URL" default:"http://localhost:8080"`
	Room      string `envconfig:"ROOM" default:"loadtest"`
	Senders   int    `envconfig:"SENDERS" default:"5"`
	Listeners int    `envconfig:"LISTENERS" default:"10"`
	// LOADTEST_MESSAGES is the number of messages each sender posts
	Messages     int           `envconfig:"MESSAGES" default:"50"`
	SendInterval time.Duration `envconfig:"SEND_INTERVAL" default:"20ms"`
	DrainWait    time.Duration `envconfig:"DRAIN_WAIT" default:"3s"`
	Colours      bool          `envconfig:"COLOURS" default:"true"`
}

type counters struct {
	sent      atomic.Int64
	sendFails atomic.Int64
	marked    atomic.Int64
	received  atomic.Int64
	seen      atomic.Int64
	typing    atomic.Int64
	userLists atomic.Int64
}

func main() {
	var cfg Config
	if err := envconfig.Process("LOADTEST", &cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stats counters
	var listeners sync.WaitGroup
	for i := 0; i < cfg.Listeners; i++ {
		listeners.Add(1)
		go func(id int) {
			defer listeners.Done()
			if err := listen(ctx, cfg, id, &stats); err != nil {
				log.Printf("listener %d: %v", id, err)
			}
		}(i)
	}

	// Give listeners time to register and join before the flood starts.
	time.Sleep(500 * time.Millisecond)

	start := time.Now()
	var senders sync.WaitGroup
	for i := 0; i < cfg.Senders; i++ {
		senders.Add(1)
		go func(id int) {
			defer senders.Done()
			send(cfg, id, &stats)
		}(i)
	}
	senders.Wait()
	sendDuration := time.Since(start)

	// Let in-flight events drain to the listeners.
	time.Sleep(cfg.DrainWait)
	cancel()
	listeners.Wait()

	report(cfg, &stats, sendDuration)
}

func send(cfg Config, id int, stats *counters) {
	client := &http.Client{Timeout: 5 * time.Second}
	author := fmt.Sprintf("sender-%d", id)

	for i := 0; i < cfg.Messages; i++ {
		body, _ := json.Marshal(map[string]string{
			"roomId":     cfg.Room,
			"fromUserId": author,
			"text":       fmt.Sprintf("message %d from %s", i, author),
		})
		resp, err := client.Post(cfg.TargetURL+"/api/messages", "application/json", bytes.NewReader(body))
		if err != nil || resp.StatusCode != http.StatusOK {
			stats.sendFails.Add(1)
			if resp != nil {
				_ = resp.Body.Close()
			}
			time.Sleep(cfg.SendInterval)
			continue
		}
		stats.sent.Add(1)

		var created struct {
			ID string `json:"id"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&created)
		_ = resp.Body.Close()

		// Every tenth message also exercises the read-receipt path.
		if decodeErr == nil && i%10 == 0 {
			markSeen(client, cfg, created.ID, author, stats)
		}
		time.Sleep(cfg.SendInterval)
	}
}

func markSeen(client *http.Client, cfg Config, messageID, reader string, stats *counters) {
	body, _ := json.Marshal(map[string]any{
		"roomId":     cfg.Room,
		"messageIds": []string{messageID},
		"username":   reader,
	})
	resp, err := client.Post(cfg.TargetURL+"/api/messages/seen", "application/json", bytes.NewReader(body))
	if err == nil && resp.StatusCode == http.StatusOK {
		stats.marked.Add(1)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
}

func listen(ctx context.Context, cfg Config, id int, stats *counters) error {
	wsURL := strings.Replace(cfg.TargetURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	register := map[string]string{"type": "registerUser", "username": fmt.Sprintf("listener-%d", id)}
	join := map[string]string{"type": "joinRoom", "roomId": cfg.Room}
	if err = conn.WriteJSON(register); err != nil {
		return err
	}
	if err = conn.WriteJSON(join); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var frame struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch frame.Type {
		case "NewMessage":
			stats.received.Add(1)
		case "MessageSeen":
			stats.seen.Add(1)
		case "UserTyping":
			stats.typing.Add(1)
		case "UserListUpdated":
			stats.userLists.Add(1)
		}
	}
}

func report(cfg Config, stats *counters, sendDuration time.Duration) {
	header := "Loadtest summary"
	if cfg.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	sent := stats.sent.Load()
	received := stats.received.Load()
	expected := sent * int64(cfg.Listeners)
	rate := float64(sent) / sendDuration.Seconds()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(true)
	table.SetBorder(false)
	table.Append([]string{"Senders", fmt.Sprintf("%d", cfg.Senders)})
	table.Append([]string{"Listeners", fmt.Sprintf("%d", cfg.Listeners)})
	table.Append([]string{"Messages sent", fmt.Sprintf("%d", sent)})
	table.Append([]string{"Send failures", fmt.Sprintf("%d", stats.sendFails.Load())})
	table.Append([]string{"Receipts posted", fmt.Sprintf("%d", stats.marked.Load())})
	table.Append([]string{"Send rate (msg/s)", fmt.Sprintf("%.1f", rate)})
	table.Append([]string{"NewMessage frames", fmt.Sprintf("%d / %d expected", received, expected)})
	table.Append([]string{"UserListUpdated frames", fmt.Sprintf("%d", stats.userLists.Load())})
	table.Append([]string{"UserTyping frames", fmt.Sprintf("%d", stats.typing.Load())})
	table.Append([]string{"MessageSeen frames", fmt.Sprintf("%d", stats.seen.Load())})
	table.Render()

	if received < expected {
		note := fmt.Sprintf("%d frames missing (slow consumers are dropped, not blocked)", expected-received)
		if cfg.Colours {
			note = color.Yellow.Render(note)
		}
		fmt.Println(note)
	}
}
