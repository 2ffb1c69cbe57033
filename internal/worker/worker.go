package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"portal-service/internal/events"
	"portal-service/internal/repository"

	"github.com/nats-io/nats.go"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

type Worker struct {
	natsConn   *nats.Conn
	apnsClient *apns2.Client
	tokens     repository.DeviceTokenRepository
}

func (w *Worker) handleBookingConfirmed(msg *nats.Msg) {
	var event events.BookingConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("Error unmarshalling event: %v", err)
		return
	}

	log.Printf(
		"📬 Event Received: User %s booked a spot in session %s.",
		event.UserID,
		event.SessionID,
	)

	tokens, err := w.tokens.GetUserDeviceTokens(context.Background(), event.UserID)
	if err != nil {
		log.Printf("Failed to retrieve device tokens for user %s: %v", event.UserID, err)
		return
	}

	if len(tokens) == 0 {
		log.Printf("No device tokens found for user %s. No notifications sent.", event.UserID)
		return
	}

	alert := fmt.Sprintf("Your booking for %q is confirmed!", event.Title)
	if event.SlotTime != nil {
		alert = fmt.Sprintf("Your booking for %q at %s is confirmed!", event.Title, *event.SlotTime)
	}

	log.Printf("Found %d device token(s) for user %s. Sending notifications...", len(tokens), event.UserID)

	payload, err := json.Marshal(map[string]any{
		"aps": map[string]any{"alert": alert, "sound": "default"},
	})
	if err != nil {
		log.Printf("Failed to build notification payload: %v", err)
		return
	}

	for _, deviceToken := range tokens {
		notification := &apns2.Notification{
			DeviceToken: deviceToken,
			Topic:       os.Getenv("APNS_TOPIC"),
			Payload:     payload,
		}

		if w.apnsClient == nil {
			log.Printf("✅ SUCCESS (mock): Push notification sent to device %s", deviceToken)
		} else {
			res, err := w.apnsClient.Push(notification)
			if err != nil {
				log.Printf("❌ FAILED to send notification: %v", err)
			} else if res.Sent() {
				log.Printf("✅ SUCCESS: Notification sent with APNS ID: %s", res.ApnsID)
			} else {
				log.Printf("❌ FAILED: Notification not sent. Reason: %s", res.Reason)
			}
		}
	}
}

func newAPNSClient() (*apns2.Client, error) {
	authKeyPath := os.Getenv("APNS_AUTH_KEY_PATH")
	keyID := os.Getenv("APNS_KEY_ID")
	teamID := os.Getenv("APNS_TEAM_ID")

	if authKeyPath == "" || authKeyPath[0] == '#' || keyID == "" || teamID == "" {
		log.Println("APNs credentials not found or invalid. Worker will run in MOCK mode.")
		return nil, nil
	}

	log.Println("APNs credentials found, initializing APNs client...")

	authKey, err := token.AuthKeyFromFile(authKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read APNs auth key: %w", err)
	}

	authToken := &token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	}

	if os.Getenv("APNS_MODE") == "production" {
		return apns2.NewTokenClient(authToken).Production(), nil
	}

	return apns2.NewTokenClient(authToken).Development(), nil
}

func Start(natsURL string, tokens repository.DeviceTokenRepository) error {
	apnsClient, err := newAPNSClient()
	if err != nil {
		return err
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		return err
	}

	worker := &Worker{
		natsConn:   nc,
		apnsClient: apnsClient,
		tokens:     tokens,
	}

	_, err = nc.Subscribe(events.SubjectBookingConfirmed, worker.handleBookingConfirmed)
	if err != nil {
		return err
	}

	return nil
}
