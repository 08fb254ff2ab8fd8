package auth

import (
	"fmt"
	"net/http"
	"time"
)

var gClient *Client

func InitClient(addr string) {
	gClient = &Client{
		baseURL: addr,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyToken проверяет токен запроса через auth сервис
// и возвращает ID пользователя.
func VerifyToken(r *http.Request) (string, error) {
	authToken := r.Header.Get("Authorization")
	if authToken == "" {
		return "", fmt.Errorf("no authorization header")
	}

	userInfo, err := gClient.GetUser(r.Context(), authToken)
	if err != nil {
		return "", err
	}

	return userInfo.ID, nil
}
