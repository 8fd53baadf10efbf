package domain

import "time"

// Pool is a betting pool that users join through its share code
type Pool struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	OwnerID   *string   `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant links a user to a pool
type Participant struct {
	ID        string    `json:"id"`
	PoolID    string    `json:"poolId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PoolSummary is the projection returned by the list and detail endpoints
type PoolSummary struct {
	ID               string               `json:"id"`
	Title            string               `json:"title"`
	Code             string               `json:"code"`
	OwnerID          *string              `json:"ownerId"`
	CreatedAt        time.Time            `json:"createdAt"`
	Participants     []ParticipantPreview `json:"participants"`
	Owner            *PoolOwner           `json:"owner"`
	ParticipantCount int                  `json:"participantCount"`
}

// ParticipantPreview is one entry of the bounded member preview
type ParticipantPreview struct {
	ID   string          `json:"id"`
	User ParticipantUser `json:"user"`
}

type ParticipantUser struct {
	AvatarURL *string `json:"avatarUrl"`
}

type PoolOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JoinResult describes what a successful join changed
type JoinResult struct {
	PoolID           string
	ParticipantID    string
	ClaimedOwnership bool
}

// ParticipantPreviewLimit bounds the participants listed per pool
const ParticipantPreviewLimit = 4

// CreatePoolRequest is the body of POST /pools
type CreatePoolRequest struct {
	Title *string `json:"title"`
}

// CreatePoolResponse is returned with 201 after a pool is created
type CreatePoolResponse struct {
	Code string `json:"code"`
}

// JoinPoolRequest is the body of POST /pools/join
type JoinPoolRequest struct {
	Code *string `json:"code"`
}

type PoolCountResponse struct {
	Count int64 `json:"count"`
}

type PoolListResponse struct {
	Pools []PoolSummary `json:"pools"`
}

type PoolDetailResponse struct {
	Pool *PoolSummary `json:"pool"`
}

// MessageResponse carries the human-readable business error body
type MessageResponse struct {
	Message string `json:"message"`
}
