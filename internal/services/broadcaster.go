package services

import "sixywin-backend/internal/models"

// Broadcaster is the fan-out surface the engines push state changes through.
// Delivery is best effort; a user with no open connection misses the message.
type Broadcaster interface {
	Broadcast(msg models.Message)
	SendToUser(userID int64, msg models.Message)
}
