package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

// SendNotification delivers one push message to one Expo token.
func SendNotification(token, title, body string, data map[string]string) error {
	message := map[string]interface{}{
		"to":    token,
		"title": title,
		"body":  body,
		"sound": "default",
		"data":  data,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	res, err := http.Post(expoPushURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("expo push status %d", res.StatusCode)
	}
	return nil
}
