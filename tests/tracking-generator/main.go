package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
)

type TrackingEvent struct {
	OrderUID       string `json:"order_uid"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Reason         string `json:"reason,omitempty"`
	PickupPoint    string `json:"pickup_point,omitempty"`
}

var statuses = []string{"SHIPPED", "DELIVERED", "FAILED_DELIVERY"}

var reasons = []string{
	"recipient not home",
	"address not found",
	"refused at door",
}

func randomString(n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyz0123456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// generateRandomEvent fakes a carrier feed message. Pass an order UID as the
// first argument to target an existing order, otherwise a random one is used
// (useful for exercising the DLQ path).
func generateRandomEvent(orderUID string) TrackingEvent {
	event := TrackingEvent{
		OrderUID: orderUID,
		Status:   statuses[rand.Intn(len(statuses))],
	}

	switch event.Status {
	case "SHIPPED":
		event.TrackingNumber = "TRK" + randomString(10)
	case "DELIVERED":
		if rand.Intn(2) == 0 {
			event.PickupPoint = fmt.Sprintf("Parcel Shop %d", rand.Intn(100))
		}
	case "FAILED_DELIVERY":
		event.Reason = reasons[rand.Intn(len(reasons))]
	}

	return event
}

func main() {
	orderUID := ""
	if len(os.Args) > 1 {
		orderUID = os.Args[1]
	}

	writer := &kafka.Writer{
		Addr:  kafka.TCP("localhost:9092"),
		Topic: "tracking-events",
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(2 * time.Second)
	for {
		select {
		case <-ticker.C:
			uid := orderUID
			if uid == "" {
				uid = randomString(16)
			}
			event := generateRandomEvent(uid)
			data, _ := json.Marshal(event)
			writer.WriteMessages(context.Background(), kafka.Message{Value: data})
			log.Println("tracking event generated", event.OrderUID, event.Status)
		case <-ctx.Done():
			return
		}
	}
}
